package arena

import "errors"

var (
	ErrDegenerateNormal = errors.New("degenerate normal")
	ErrAttributeLength  = errors.New("attribute length does not match vertex count")
	ErrUnknownAttribute = errors.New("unknown mesh attribute")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrEntityNotFound   = errors.New("entity not found")
)
