package contract_test

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/Mohsinsiddi/w3sale/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSale answers a handful of crowdsale views.
type fakeSale struct {
	lastFrom common.Address
	fail     bool
}

func (f *fakeSale) Call(from, _ common.Address, data []byte) ([]byte, error) {
	f.lastFrom = from
	if f.fail {
		return nil, errors.New("execution reverted")
	}
	sale := contract.CrowdsaleABI()
	switch {
	case bytes.Equal(data[:4], sale.Methods["price"].ID):
		return sale.Methods["price"].Outputs.Pack(units.MustParse("0.001"))
	case bytes.Equal(data[:4], sale.Methods["whitelist"].ID):
		args, err := sale.Methods["whitelist"].Inputs.Unpack(data[4:])
		if err != nil {
			return nil, err
		}
		return sale.Methods["whitelist"].Outputs.Pack(args[0].(common.Address) == bob)
	case bytes.Equal(data[:4], sale.Methods["getWhitelistedAddresses"].ID):
		return sale.Methods["getWhitelistedAddresses"].Outputs.Pack([]common.Address{alice, bob})
	}
	return nil, errors.New("unexpected selector")
}

func TestCallerDecodesOutputs(t *testing.T) {
	backend := &fakeSale{}
	c := contract.NewCaller(backend, contract.CrowdsaleABI(), sale)

	price, err := c.CallOne("price")
	require.NoError(t, err)
	assert.Equal(t, units.MustParse("0.001").String(), price.(*big.Int).String())

	member, err := c.CallOne("whitelist", bob)
	require.NoError(t, err)
	assert.Equal(t, true, member)

	list, err := c.From(alice).CallOne("getWhitelistedAddresses")
	require.NoError(t, err)
	assert.Equal(t, []common.Address{alice, bob}, list)
	assert.Equal(t, alice, backend.lastFrom)
	assert.Equal(t, sale, c.Address())
}

func TestCallerRejectsWritesAndUnknown(t *testing.T) {
	c := contract.NewCaller(&fakeSale{}, contract.CrowdsaleABI(), sale)

	_, err := c.Call("buyTokens", big.NewInt(1))
	assert.ErrorContains(t, err, "not a read function")

	_, err = c.Call("mint")
	assert.ErrorContains(t, err, "not found")
}

func TestCallerWrapsBackendError(t *testing.T) {
	c := contract.NewCaller(&fakeSale{fail: true}, contract.CrowdsaleABI(), sale)
	_, err := c.Call("price")
	assert.ErrorContains(t, err, "execution reverted")
}
