package linnworks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cheyinl/linnworks-soap/soap"
)

const testToken = "3f5c-token"

type recordedCall struct {
	operation string
	params    soap.Params
}

// mockTransport records every call and answers with a canned result.
type mockTransport struct {
	mu     sync.Mutex
	calls  []recordedCall
	result *soap.CallResult
	err    error
}

func (m *mockTransport) CallContext(ctx context.Context, operation string, params soap.Params) (*soap.CallResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, recordedCall{operation: operation, params: params})
	return m.result, m.err
}

func (m *mockTransport) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockTransport) lastCall(t *testing.T) recordedCall {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.calls, "no call recorded")
	return m.calls[len(m.calls)-1]
}

// respondWith makes the mock answer with <operation>Result = result.
func (m *mockTransport) respondWith(operation string, result interface{}) {
	m.result = &soap.CallResult{
		Operation:       operation,
		StatusCode:      200,
		RequestContent:  soap.CallContent{Body: "<request/>"},
		ResponseContent: soap.CallContent{Body: "<response/>"},
		Body:            soap.Map{operation + "Result": result},
	}
}

func newTestAPI(t *testing.T, m *mockTransport) *API {
	t.Helper()
	api, err := New(context.Background(), testToken, InventoryEndpoint, WithTransport(m))
	require.NoError(t, err)
	return api
}

func param(t *testing.T, params soap.Params, name string) interface{} {
	t.Helper()
	v, ok := params.Get(name)
	require.True(t, ok, "parameter %s missing", name)
	return v
}
