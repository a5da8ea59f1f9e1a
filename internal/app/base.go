package app

import "github.com/cerotheproto/ledmatrixd/internal/frame"

// Base provides no-op defaults for App so concrete apps only override what
// they need, mirroring the Python BaseApp's pass-through methods.
type Base struct {
	AppName string
}

func (b *Base) Name() string                     { return b.AppName }
func (b *Base) Start()                            {}
func (b *Base) Stop()                             {}
func (b *Base) Update(dt float64, events []Event) {}
func (b *Base) Render() (*frame.FrameDescription, *frame.Frame, *frame.Frame) {
	return nil, nil, nil
}
func (b *Base) Queries() []Query { return nil }
func (b *Base) Events() []Event  { return nil }
func (b *Base) HandleQuery(q Query) (any, error) {
	return nil, &UnsupportedQueryError{Query: q}
}

// UnsupportedQueryError is returned by Base.HandleQuery and any app that
// receives a query type it doesn't recognize.
type UnsupportedQueryError struct {
	Query Query
}

func (e *UnsupportedQueryError) Error() string {
	return "query type is not supported by this application"
}
