package fanout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupshard/groupshard/api/proto"
	"github.com/groupshard/groupshard/pkg/types"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := proto.AddMemberMsg{
		GroupID: "g1",
		Member:  types.MemberRef{UID: "u1", Role: types.RoleMember},
	}
	data, err := Encode(types.MsgAddMember, msg)
	require.NoError(t, err)

	gotType, raw, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, types.MsgAddMember, gotType)

	var got proto.AddMemberMsg
	require.NoError(t, DecodeInto(raw, &got))
	assert.Equal(t, msg, got)
}

func TestDecodeRejectsEmptyRecord(t *testing.T) {
	_, _, err := Decode(nil)
	assert.Error(t, err)
}
