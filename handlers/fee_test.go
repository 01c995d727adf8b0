package handlers

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v2/client"
	"github.com/centrifuge/go-substrate-rpc-client/v2/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugnet/plug-api-types-go/models"
)

func TestFeeBalanceUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`125000000`, "125000000"},
		{`"125000000"`, "125000000"},
		{`"12ab"`, ""},
		{`"0x77359400"`, "2000000000"},
		{`"340282366920938463463374607431768211455"`, "340282366920938463463374607431768211455"},
	}
	for _, c := range cases {
		var b FeeBalance
		err := json.Unmarshal([]byte(c.in), &b)
		if c.want == "" {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, b.String(), c.in)
	}
}

func TestFeeBalanceMarshal(t *testing.T) {
	var b FeeBalance
	b.SetUint64(42)
	bz, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `"42"`, string(bz))
}

func TestRuntimeDispatchInfoUnmarshal(t *testing.T) {
	var info RuntimeDispatchInfo
	err := json.Unmarshal([]byte(`{"weight":195000000,"class":"normal","partialFee":"0x2540be400"}`), &info)
	require.NoError(t, err)
	assert.Equal(t, uint64(195000000), info.Weight)
	assert.Equal(t, "normal", info.Class)
	assert.Equal(t, "10000000000", info.PartialFee.String())
}

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params []string        `json:"params"`
}

func fakeNode(t *testing.T, result string, seen *rpcRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(seen.ID) + `,"result":` + result + `}`))
	}))
}

func TestPaymentQueryInfo(t *testing.T) {
	var req rpcRequest
	srv := fakeNode(t, `{"weight":10,"class":"normal","partialFee":"1000"}`, &req)
	defer srv.Close()

	cli, err := client.Connect(srv.URL)
	require.NoError(t, err)

	xt := models.NewVersionedExtrinsic(types.Call{
		CallIndex: types.CallIndex{SectionIndex: 4, MethodIndex: 0},
		Args:      types.Args{0xaa, 0xbb},
	})
	err = xt.SignFake(models.NewMultiAddressFromAccountID(signature.TestKeyringPairAlice.PublicKey), models.SignatureOptions{
		GenesisHash: types.NewHash(bytes.Repeat([]byte{0x01}, 32)),
		Nonce:       types.NewUCompactFromUInt(5),
	})
	require.NoError(t, err)

	info, err := PaymentQueryInfo(cli, xt, nil)
	require.NoError(t, err)
	assert.Equal(t, "payment_queryInfo", req.Method)
	enc, err := xt.Hex()
	require.NoError(t, err)
	assert.Equal(t, []string{enc}, req.Params)
	assert.Equal(t, uint64(10), info.Weight)
	assert.Equal(t, "1000", info.PartialFee.String())

	at := types.NewHash(bytes.Repeat([]byte{0x02}, 32))
	_, err = PaymentQueryInfo(cli, xt, &at)
	require.NoError(t, err)
	require.Len(t, req.Params, 2)
	assert.Equal(t, types.HexEncodeToString(at[:]), req.Params[1])
}

func TestFeeEstimatorQuote(t *testing.T) {
	var req rpcRequest
	srv := fakeNode(t, `{"weight":125000000,"class":"normal","partialFee":"0x3e8"}`, &req)
	defer srv.Close()

	cli, err := client.Connect(srv.URL)
	require.NoError(t, err)

	f := NewFeeEstimator(nil, nil)
	alice := models.NewMultiAddressFromAccountID(signature.TestKeyringPairAlice.PublicKey)
	info, err := f.quote(cli, types.Call{
		CallIndex: types.CallIndex{SectionIndex: 4, MethodIndex: 0},
		Args:      types.Args{0xaa, 0xbb},
	}, alice, models.SignatureOptions{
		GenesisHash: hashOf(0x01),
		Nonce:       types.NewUCompactFromUInt(3),
		Doughnut:    models.NewOptionDoughnut(models.Doughnut{0xde, 0xad}),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(125000000), info.Weight)
	assert.Equal(t, "1000", info.PartialFee.String())

	// the node is asked about a fake-signed extrinsic carrying the doughnut
	require.Len(t, req.Params, 1)
	var sent models.VersionedExtrinsic
	require.NoError(t, sent.UnmarshalHex(req.Params[0]))
	assert.True(t, sent.IsSigned())
	assert.Equal(t, strings.Repeat("42", 64), hex.EncodeToString(sent.Signature.Signature.Raw()))
	assert.Equal(t, alice, sent.Signature.Signer)
	ok, d := sent.Signature.Doughnut.Unwrap()
	assert.True(t, ok)
	assert.Equal(t, []byte{0xde, 0xad}, []byte(d))
}

func TestEstimateFeeNeedsAccountID(t *testing.T) {
	f := NewFeeEstimator(nil, nil)
	_, err := f.EstimateFee(types.Call{}, models.MultiAddress{IsIndex: true, AsIndex: types.NewUCompactFromUInt(1)},
		models.NewOptionDoughnutEmpty())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrConstruction), "got %v", err)
}
