package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sigweihq/walletkit/pkg/constants"
	"github.com/sigweihq/walletkit/pkg/utils"
)

// ErrAPI is returned when the explorer answers with status "0"
var ErrAPI = errors.New("explorer api error")

const noTransactionsFound = "No transactions found"

// Transaction is one row of the account txlist response. Numeric fields are
// decimal strings as returned by the API.
type Transaction struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	Nonce           string `json:"nonce"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Gas             string `json:"gas"`
	GasPrice        string `json:"gasPrice"`
	GasUsed         string `json:"gasUsed"`
	IsError         string `json:"isError"`
	TxReceiptStatus string `json:"txreceipt_status"`
	Input           string `json:"input"`
	ContractAddress string `json:"contractAddress"`
	Confirmations   string `json:"confirmations"`
	FunctionName    string `json:"functionName"`
}

// BlockTime parses TimeStamp. Returns nil when it is missing or malformed.
func (t Transaction) BlockTime() *time.Time {
	seconds, err := strconv.ParseInt(t.TimeStamp, 10, 64)
	if err != nil {
		return nil
	}
	ts := time.Unix(seconds, 0).UTC()
	return &ts
}

// Failed reports whether the transaction reverted
func (t Transaction) Failed() bool {
	return t.IsError == "1" || t.TxReceiptStatus == "0"
}

// ValueWei returns Value as an integer, or nil if it does not parse
func (t Transaction) ValueWei() *big.Int {
	v, ok := new(big.Int).SetString(t.Value, 10)
	if !ok {
		return nil
	}
	return v
}

// TxListParams selects a page of an account's normal transactions
type TxListParams struct {
	Page   int    // 1-based; 0 means 1
	Offset int    // page size; 0 means constants.HistoryLimit
	Sort   string // "asc" or "desc"; empty means "desc"
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// TxList returns the normal (external) transactions of address, newest first
// by default. An account with no transactions yields an empty slice.
func (c *Client) TxList(ctx context.Context, address string, params *TxListParams) ([]Transaction, error) {
	if params == nil {
		params = &TxListParams{}
	}
	page, offset, sort := params.Page, params.Offset, params.Sort
	if page == 0 {
		page = 1
	}
	if offset == 0 {
		offset = constants.HistoryLimit
	}
	if sort == "" {
		sort = "desc"
	}

	if page < 1 {
		return nil, fmt.Errorf("page must be positive, got %d", page)
	}
	if offset < 1 || offset > constants.ExplorerMaxOffset {
		return nil, fmt.Errorf("offset must be between 1 and %d, got %d", constants.ExplorerMaxOffset, offset)
	}
	if sort != "asc" && sort != "desc" {
		return nil, fmt.Errorf("sort must be asc or desc, got %q", sort)
	}
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("address is required")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	if c.chainID != 0 {
		q.Set("chainid", strconv.FormatInt(c.chainID, 10))
	}
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("page", strconv.Itoa(page))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("sort", sort)
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	u.RawQuery = q.Encode()

	c.logger.DebugContext(ctx, "explorer txlist", "url", utils.RedactAPIKey(u.String(), c.apiKey))

	var resp apiResponse
	if err := httpGet(ctx, c.httpClient, u.String(), &resp); err != nil {
		return nil, fmt.Errorf("failed to get transaction list: %w", err)
	}

	if resp.Status != "1" {
		if strings.HasPrefix(resp.Message, noTransactionsFound) {
			return []Transaction{}, nil
		}
		var detail string
		if err := json.Unmarshal(resp.Result, &detail); err != nil || detail == "" {
			detail = resp.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrAPI, detail)
	}

	var txs []Transaction
	if err := json.Unmarshal(resp.Result, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transaction list: %w", err)
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return txs, nil
}
