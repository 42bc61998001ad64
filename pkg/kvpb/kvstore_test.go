// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-kvgateway.
//
// go-kvgateway is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package kvpb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

func TestStoreRequest_WireFormat(t *testing.T) {
	b, err := proto.Marshal(&StoreRequest{Key: "a", Value: "bc"})
	require.NoError(t, err)

	// field 1, length-delimited: tag 0x0a; field 2: tag 0x12
	assert.Equal(t, []byte{0x0a, 0x01, 'a', 0x12, 0x02, 'b', 'c'}, b)
}

func TestStoreRequest_EmptyFieldsOmitted(t *testing.T) {
	b, err := proto.Marshal(&StoreRequest{})
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestMessages_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   proto.Message
		out  proto.Message
	}{
		{"StoreRequest", &StoreRequest{Key: "key_1", Value: "value_1"}, &StoreRequest{}},
		{"StoreRequest unicode", &StoreRequest{Key: "ключ", Value: "значение"}, &StoreRequest{}},
		{"LoadRequest", &LoadRequest{Key: "key_1"}, &LoadRequest{}},
		{"LoadReply", &LoadReply{Key: "key_1", Value: "value_1"}, &LoadReply{}},
		{"LoadReply empty value", &LoadReply{Key: "key_1"}, &LoadReply{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := proto.Marshal(tt.in)
			require.NoError(t, err)
			require.NoError(t, proto.Unmarshal(b, tt.out))
			assert.True(t, proto.Equal(tt.in, tt.out), "got %v, want %v", tt.out, tt.in)
		})
	}
}

func TestUnmarshal_KeepsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, "key")
	b = protowire.AppendTag(b, 7, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)

	var m LoadRequest
	require.NoError(t, proto.Unmarshal(b, &m))
	assert.Equal(t, "key", m.GetKey())
	assert.NotEmpty(t, m.ProtoReflect().GetUnknown())
}

func TestUnmarshal_LastFieldWins(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, "first")
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, "second")

	var m LoadRequest
	require.NoError(t, proto.Unmarshal(b, &m))
	assert.Equal(t, "second", m.GetKey())
}

func TestMarshal_RejectsInvalidUTF8(t *testing.T) {
	_, err := proto.Marshal(&StoreRequest{Key: "\xff"})
	assert.Error(t, err)
}

func TestGetters_NilReceiver(t *testing.T) {
	var s *StoreRequest
	var l *LoadRequest
	var r *LoadReply
	assert.Empty(t, s.GetKey())
	assert.Empty(t, s.GetValue())
	assert.Empty(t, l.GetKey())
	assert.Empty(t, r.GetKey())
	assert.Empty(t, r.GetValue())
}

func TestFileDescriptor(t *testing.T) {
	fd := File_kvstore_proto
	assert.Equal(t, protoreflect.FullName("kvstore.v1"), fd.Package())
	assert.Equal(t, "kvstore.proto", fd.Path())

	svc := fd.Services().ByName("KeyValueStorage")
	require.NotNil(t, svc)
	assert.Equal(t, protoreflect.FullName(KeyValueStorage_ServiceDesc.ServiceName), svc.FullName())

	store := svc.Methods().ByName("StoreKeyValue")
	require.NotNil(t, store)
	assert.Equal(t, protoreflect.FullName("kvstore.v1.StoreRequest"), store.Input().FullName())
	assert.Equal(t, protoreflect.FullName("google.protobuf.Empty"), store.Output().FullName())

	load := svc.Methods().ByName("LoadKeyValue")
	require.NotNil(t, load)
	assert.Equal(t, protoreflect.FullName("kvstore.v1.LoadRequest"), load.Input().FullName())
	assert.Equal(t, protoreflect.FullName("kvstore.v1.LoadReply"), load.Output().FullName())

	value := (&LoadReply{}).ProtoReflect().Descriptor().Fields().ByName("value")
	require.NotNil(t, value)
	assert.Equal(t, protoreflect.FieldNumber(2), value.Number())
	assert.Equal(t, protoreflect.StringKind, value.Kind())
}
