package eth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/warp-contracts/launchpad/src/utils/config"
	"github.com/warp-contracts/launchpad/src/utils/logger"
)

var ErrExplorerDisabled = errors.New("block explorer API is not configured")

type (
	RawABIResponse struct {
		Status  *string `json:"status"`
		Message *string `json:"message"`
		Result  *string `json:"result"`
	}
)

// Fetches verified contract ABIs from an Etherscan compatible API
type Explorer struct {
	log    *logrus.Entry
	url    string
	apiKey string
	client *resty.Client
	cache  *cache.Cache
}

func NewExplorer(config *config.Config) (self *Explorer) {
	self = new(Explorer)
	self.log = logger.NewSublogger("explorer")
	self.url = config.Explorer.Url
	self.apiKey = config.Explorer.ApiKey
	self.client = resty.New().SetTimeout(config.Explorer.Timeout)
	self.cache = cache.New(config.Explorer.CacheTTL, 2*config.Explorer.CacheTTL)
	return
}

func (self *Explorer) IsEnabled() bool {
	return self.url != ""
}

func (self *Explorer) GetContractRawABI(ctx context.Context, address common.Address) (rawABIResponse *RawABIResponse, err error) {
	if !self.IsEnabled() {
		return nil, ErrExplorerDisabled
	}

	rawABIResponse = &RawABIResponse{}
	resp, err := self.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"module":  "contract",
			"action":  "getabi",
			"address": address.Hex(),
			"apikey":  self.apiKey,
		}).
		SetResult(rawABIResponse).
		ForceContentType("application/json").
		Get(self.url)
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("get contract raw abi was not successful: %s", resp.Status())
	}

	if rawABIResponse.Status == nil || *rawABIResponse.Status != "1" || rawABIResponse.Result == nil {
		var reason string
		if rawABIResponse.Result != nil {
			reason = *rawABIResponse.Result
		}
		return nil, fmt.Errorf("get contract raw abi failed: %s", reason)
	}

	return rawABIResponse, nil
}

// Results are cached per address
func (self *Explorer) GetContractABI(ctx context.Context, address common.Address) (*abi.ABI, error) {
	if cached, ok := self.cache.Get(address.Hex()); ok {
		return cached.(*abi.ABI), nil
	}

	rawABIResponse, err := self.GetContractRawABI(ctx, address)
	if err != nil {
		return nil, err
	}

	contractABI, err := abi.JSON(strings.NewReader(*rawABIResponse.Result))
	if err != nil {
		return nil, err
	}

	self.log.WithField("address", address.Hex()).Debug("Fetched contract ABI")
	self.cache.Set(address.Hex(), &contractABI, cache.DefaultExpiration)
	return &contractABI, nil
}
