package rules

import "errors"

// ErrInvalidDimensions is returned by the constructors when width or height
// falls outside [game.MinSize, game.MaxSize].
var ErrInvalidDimensions = errors.New("invalid board dimensions")
