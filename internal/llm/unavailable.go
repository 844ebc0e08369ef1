package llm

import "context"

// UnavailableProvider fails every call with ErrProviderUnavailable. It
// stands in when no provider is configured so features that do not need
// generation keep working.
type UnavailableProvider struct {
	Reason error
}

var _ Provider = UnavailableProvider{}

func (p UnavailableProvider) Generate(context.Context, Request) (*Response, error) {
	return nil, &ErrProviderUnavailable{Err: p.Reason}
}

func (p UnavailableProvider) ModelID() string {
	return "unavailable"
}
