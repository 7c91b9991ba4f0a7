// Package transport contains a hand-written go.uber.org/mock/gomock double
// for internal/transport.Publisher, in the shape mockgen would generate,
// grounded on the same generated-mock call shape referenced in
// mocks/store/store_mock.go.
package transport

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	realtransport "ekyc-engine/internal/transport"
)

// MockPublisher is a mock of the transport.Publisher interface.
type MockPublisher struct {
	ctrl     *gomock.Controller
	recorder *MockPublisherMockRecorder
}

// MockPublisherMockRecorder is the mock recorder for MockPublisher.
type MockPublisherMockRecorder struct {
	mock *MockPublisher
}

// NewMockPublisher creates a new mock instance.
func NewMockPublisher(ctrl *gomock.Controller) *MockPublisher {
	mock := &MockPublisher{ctrl: ctrl}
	mock.recorder = &MockPublisherMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPublisher) EXPECT() *MockPublisherMockRecorder {
	return m.recorder
}

// Offer mocks base method.
func (m *MockPublisher) Offer(ctx context.Context, payload []byte) (realtransport.PublishResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Offer", ctx, payload)
	ret0, _ := ret[0].(realtransport.PublishResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Offer indicates an expected call of Offer.
func (mr *MockPublisherMockRecorder) Offer(ctx, payload interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Offer",
		reflect.TypeOf((*MockPublisher)(nil).Offer), ctx, payload)
}

// Close mocks base method.
func (m *MockPublisher) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockPublisherMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close",
		reflect.TypeOf((*MockPublisher)(nil).Close))
}

var _ realtransport.Publisher = (*MockPublisher)(nil)
