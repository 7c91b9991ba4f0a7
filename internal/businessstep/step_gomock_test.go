package businessstep_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"ekyc-engine/internal/businessstep"
	"ekyc-engine/internal/store"
	"ekyc-engine/internal/wire"
	mockstore "ekyc-engine/mocks/store"
)

// These exercise businessstep.Process against a gomock-generated Store
// double instead of the hand-rolled fakeStore in step_test.go, so call order and
// call count are asserted rather than inferred from map state. Grounded on
// the gomock.Controller / EXPECT().Return(...) idiom used throughout
// abramin-Credo's internal/auth/service tests.

func TestProcess_AddUserRequest_ChecksExistsBeforeInsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := mockstore.NewMockStore(ctrl)

	gomock.InOrder(
		s.EXPECT().ExistsUser(gomock.Any(), "ID9", "Ivy").Return(false, nil),
		s.EXPECT().InsertUser(gomock.Any(), gomock.Any()).Return(true, nil),
	)

	frame := encodeRequest(t, wire.Fields{
		Msg: wire.MsgAddUserRequest, ID: "ID9", Name: "Ivy", Verified: "false",
	})

	result, err := businessstep.Process(context.Background(), s, frame)
	require.NoError(t, err)
	require.Equal(t, businessstep.OutcomeUserAdded, result.Outcome)
	require.True(t, result.Verified)
}

func TestProcess_AddUserRequest_ExistsTrueNeverCallsInsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := mockstore.NewMockStore(ctrl)

	s.EXPECT().ExistsUser(gomock.Any(), "ID10", "Jae").Return(true, nil)
	s.EXPECT().InsertUser(gomock.Any(), gomock.Any()).Times(0)

	frame := encodeRequest(t, wire.Fields{
		Msg: wire.MsgAddUserRequest, ID: "ID10", Name: "Jae", Verified: "false",
	})

	result, err := businessstep.Process(context.Background(), s, frame)
	require.NoError(t, err)
	require.False(t, result.Verified)
}

func TestProcess_VerificationRequest_MockStoreError_TreatedAsNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := mockstore.NewMockStore(ctrl)

	s.EXPECT().ExistsUser(gomock.Any(), "ID11", "Kim").Return(false, errors.New("connection reset"))

	frame := encodeRequest(t, wire.Fields{
		Msg: wire.MsgVerificationRequest, ID: "ID11", Name: "Kim", Verified: "false",
	})

	result, err := businessstep.Process(context.Background(), s, frame)
	require.NoError(t, err)
	require.False(t, result.Verified)
}

var _ store.Store = (*mockstore.MockStore)(nil)
