package handlers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v2/client"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugnet/plug-api-types-go/models"
)

func TestAuthorSubmitExtrinsic(t *testing.T) {
	want := "0x" + strings.Repeat("ab", 32)
	var req rpcRequest
	srv := fakeNode(t, `"`+want+`"`, &req)
	defer srv.Close()

	cli, err := client.Connect(srv.URL)
	require.NoError(t, err)

	xt := models.NewVersionedExtrinsic(types.Call{
		CallIndex: types.CallIndex{SectionIndex: 4, MethodIndex: 0},
		Args:      types.Args{0xaa, 0xbb},
	})
	err = xt.SignFake(models.NewMultiAddressFromAccountID(bytes.Repeat([]byte{0x01}, 32)), models.SignatureOptions{})
	require.NoError(t, err)

	h, err := AuthorSubmitExtrinsic(cli, xt)
	require.NoError(t, err)
	assert.Equal(t, "author_submitExtrinsic", req.Method)
	enc, err := xt.Hex()
	require.NoError(t, err)
	assert.Equal(t, []string{enc}, req.Params)
	assert.Equal(t, want, types.HexEncodeToString(h[:]))
}
