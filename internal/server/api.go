package server

import (
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/Mohsinsiddi/w3sale/internal/chain"
	"github.com/Mohsinsiddi/w3sale/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StatusFor maps a rejection to an HTTP status: 403 for permission
// failures, 409 for state conflicts, 404 for missing things, 400 for other
// known rejections and 500 for the rest.
func StatusFor(err error) int {
	switch chain.Code(err) {
	case "":
		return http.StatusInternalServerError
	case "NOT_OWNER", "NOT_WHITELISTED":
		return http.StatusForbidden
	case "SALE_CLOSED", "SALE_NOT_STARTED", "SALE_FINALIZED", "CAP_EXCEEDED",
		"NONCE_TOO_LOW", "NONCE_TOO_HIGH", "ADDRESS_IN_USE":
		return http.StatusConflict
	case "NO_CONTRACT", "RECEIPT_NOT_FOUND":
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("request_id", c.GetString("request_id")), zap.Error(err))
	}
	c.JSON(status, errorBody{Error: err.Error(), Code: chain.Code(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: msg, Code: "BAD_REQUEST"})
}

func addressParam(c *gin.Context, name string) (common.Address, bool) {
	v := c.Param(name)
	if !common.IsHexAddress(v) {
		badRequest(c, "invalid address: "+v)
		return common.Address{}, false
	}
	return common.HexToAddress(v), true
}

func amount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func (s *Server) rpc(c *gin.Context) {
	var req chain.RPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, &chain.RPCResponse{JSONRPC: "2.0", Error: chain.InvalidRequest("parse error: %v", err)})
		return
	}
	c.JSON(http.StatusOK, chain.Dispatch(s.backend, &req))
}

type txRequest struct {
	Raw hexutil.Bytes `json:"raw" binding:"required"`
}

func (s *Server) submitTx(c *gin.Context) {
	var req txRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := s.backend.SendRawTransaction(req.Raw)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chain.ToRPCReceipt(r))
}

func (s *Server) getInfo(c *gin.Context) {
	id, err := s.backend.ChainID()
	if err != nil {
		s.fail(c, err)
		return
	}
	height, err := s.backend.BlockNumber()
	if err != nil {
		s.fail(c, err)
		return
	}
	ts, err := s.backend.BlockTime()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"chain_id":   id.String(),
		"block":      height,
		"block_time": ts.Unix(),
	})
}

func (s *Server) getAccount(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	bal, err := s.backend.BalanceAt(addr)
	if err != nil {
		s.fail(c, err)
		return
	}
	nonce, err := s.backend.NonceAt(addr)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr.Hex(), "balance": amount(bal), "nonce": nonce})
}

type saleResponse struct {
	Address          string `json:"address"`
	Owner            string `json:"owner"`
	Token            string `json:"token"`
	Status           string `json:"status"`
	Price            string `json:"price"`
	MaxTokens        string `json:"max_tokens"`
	TokensSold       string `json:"tokens_sold"`
	Remaining        string `json:"remaining"`
	OpeningTime      uint64 `json:"opening_time"`
	MinContribution  string `json:"min_contribution"`
	MaxContribution  string `json:"max_contribution"`
	IsOpen           bool   `json:"is_open"`
	WhitelistEnabled bool   `json:"whitelist_enabled"`
	Finalized        bool   `json:"finalized"`
	Raised           string `json:"raised"`
}

func (s *Server) getSale(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	st, err := contract.ReadSale(s.backend, addr)
	if err != nil {
		s.fail(c, err)
		return
	}
	now, err := s.backend.BlockTime()
	if err != nil {
		s.fail(c, err)
		return
	}
	raised, err := s.backend.BalanceAt(addr)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saleResponse{
		Address:          addr.Hex(),
		Owner:            st.Owner.Hex(),
		Token:            st.Token.Hex(),
		Status:           string(st.Status(now)),
		Price:            amount(st.Price),
		MaxTokens:        amount(st.MaxTokens),
		TokensSold:       amount(st.TokensSold),
		Remaining:        amount(st.Remaining()),
		OpeningTime:      st.OpeningTime,
		MinContribution:  amount(st.MinContribution),
		MaxContribution:  amount(st.MaxContribution),
		IsOpen:           st.IsOpen,
		WhitelistEnabled: st.WhitelistEnabled,
		Finalized:        st.Finalized,
		Raised:           amount(raised),
	})
}

func (s *Server) getWhitelist(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	st, err := contract.ReadSale(s.backend, addr)
	if err != nil {
		s.fail(c, err)
		return
	}
	members := make([]string, len(st.Whitelist))
	for i, a := range st.Whitelist {
		members[i] = a.Hex()
	}
	c.JSON(http.StatusOK, gin.H{"enabled": st.WhitelistEnabled, "addresses": members})
}

func (s *Server) getToken(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	t, err := contract.ReadToken(s.backend, addr)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address":      addr.Hex(),
		"name":         t.Name,
		"symbol":       t.Symbol,
		"decimals":     t.Decimals,
		"total_supply": amount(t.TotalSupply),
	})
}

func (s *Server) getTokenBalance(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	account, ok := addressParam(c, "account")
	if !ok {
		return
	}
	bal, err := contract.TokenBalance(s.backend, addr, account)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": addr.Hex(), "account": account.Hex(), "balance": amount(bal)})
}

func (s *Server) getReceipt(c *gin.Context) {
	h := c.Param("hash")
	b, err := hexutil.Decode(h)
	if err != nil || len(b) != common.HashLength {
		badRequest(c, "invalid transaction hash: "+h)
		return
	}
	r, err := s.backend.TransactionReceipt(common.BytesToHash(b))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chain.ToRPCReceipt(r))
}

type eventResponse struct {
	Block    uint64            `json:"block"`
	TxHash   string            `json:"tx"`
	Contract string            `json:"contract"`
	Event    string            `json:"event"`
	Fields   map[string]string `json:"fields"`
}

func (s *Server) getEvents(c *gin.Context) {
	var q chain.LogQuery
	if v := c.Query("contract"); v != "" {
		if !common.IsHexAddress(v) {
			badRequest(c, "invalid contract address: "+v)
			return
		}
		a := common.HexToAddress(v)
		q.Address = &a
	}
	q.Event = c.Query("name")
	var err error
	if v := c.Query("from"); v != "" {
		if q.FromBlock, err = strconv.ParseUint(v, 10, 64); err != nil {
			badRequest(c, "invalid from block: "+v)
			return
		}
	}
	if v := c.Query("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil || q.Limit < 0 {
			badRequest(c, "invalid limit: "+v)
			return
		}
	}

	logs, err := s.backend.FilterLogs(q)
	if errors.Is(err, contract.ErrUnknownEvent) {
		badRequest(c, err.Error())
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]eventResponse, 0, len(logs))
	for _, l := range logs {
		d, err := contract.DecodeLog(l.Eth())
		if err != nil {
			continue
		}
		fields := make(map[string]string, len(d.Fields))
		for k, v := range d.Fields {
			if n, ok := v.(*big.Int); ok {
				fields[k] = n.String()
				continue
			}
			fields[k] = contract.FormatValue(v)
		}
		out = append(out, eventResponse{
			Block:    l.BlockNumber,
			TxHash:   l.TxHash.Hex(),
			Contract: l.Address.Hex(),
			Event:    d.Name,
			Fields:   fields,
		})
	}
	c.JSON(http.StatusOK, out)
}
