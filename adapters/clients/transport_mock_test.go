package clients

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockTransport struct {
	mock.Mock
}

func (m *mockTransport) Do(ctx context.Context, req *HTTPRequest) *Response {
	args := m.MethodCalled("Do", req)
	return args.Get(0).(*Response)
}

func (m *mockTransport) DoBatch(ctx context.Context, reqs []*HTTPRequest) []*Response {
	args := m.MethodCalled("DoBatch", reqs)
	return args.Get(0).([]*Response)
}
