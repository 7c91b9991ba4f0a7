// Package store contains a hand-written go.uber.org/mock/gomock double for
// internal/store.Store, in the shape mockgen would generate (a Mock*
// struct plus a MockRecorder), since mockgen itself cannot be invoked in
// this environment. Grounded on the generated-mock call shape used by
// abramin-Credo's internal/auth/service/session_revoke_test.go
// (mockSessionStore.EXPECT().Method(...).Return(...)).
package store

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	realstore "ekyc-engine/internal/store"
)

// MockStore is a mock of the store.Store interface.
type MockStore struct {
	ctrl     *gomock.Controller
	recorder *MockStoreMockRecorder
}

// MockStoreMockRecorder is the mock recorder for MockStore.
type MockStoreMockRecorder struct {
	mock *MockStore
}

// NewMockStore creates a new mock instance.
func NewMockStore(ctrl *gomock.Controller) *MockStore {
	mock := &MockStore{ctrl: ctrl}
	mock.recorder = &MockStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockStore) EXPECT() *MockStoreMockRecorder {
	return m.recorder
}

// ExistsUser mocks base method.
func (m *MockStore) ExistsUser(ctx context.Context, id, name string) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ExistsUser", ctx, id, name)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ExistsUser indicates an expected call of ExistsUser.
func (mr *MockStoreMockRecorder) ExistsUser(ctx, id, name interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ExistsUser",
		reflect.TypeOf((*MockStore)(nil).ExistsUser), ctx, id, name)
}

// InsertUser mocks base method.
func (m *MockStore) InsertUser(ctx context.Context, fields realstore.UserFields) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InsertUser", ctx, fields)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// InsertUser indicates an expected call of InsertUser.
func (mr *MockStoreMockRecorder) InsertUser(ctx, fields interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertUser",
		reflect.TypeOf((*MockStore)(nil).InsertUser), ctx, fields)
}

// Close mocks base method.
func (m *MockStore) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockStoreMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close",
		reflect.TypeOf((*MockStore)(nil).Close))
}

var _ realstore.Store = (*MockStore)(nil)
