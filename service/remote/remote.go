// Package remote talks to markets hosted behind an HTTP market gateway.
package remote

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"creditagency/core"
	"creditagency/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// TokenSource bearer token presented to the gateway, its subject is the agency address
type TokenSource func(ctx context.Context) (string, error)

// StaticToken token source always returning token
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// Client market gateway client, implements MarketClient, MarketExecutor and InstantiationFeed
type Client struct {
	client *resty.Client
	token  TokenSource
}

// New new gateway client
func New(endpoint string, timeout time.Duration, token TokenSource) *Client {
	return &Client{
		client: resthttp.New(endpoint, timeout),
		token:  token,
	}
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	token, err := c.token(ctx)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("gateway token")
		return nil, errors.Wrap(err, "gateway token")
	}

	return resthttp.Request(ctx, c.client).SetAuthToken(token), nil
}

func (c *Client) get(ctx context.Context, path string, obj interface{}) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.Get(path)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("GET", path)
		return errors.Wrapf(err, "GET %s", path)
	}

	return resthttp.ParseResponse(resp, obj)
}

func marketPath(market string, parts ...string) string {
	path := "/markets/" + url.PathEscape(market)
	for _, p := range parts {
		path += "/" + url.PathEscape(p)
	}

	return path
}

func (c *Client) CreditLine(ctx context.Context, market, account string) (*core.CreditLineValues, error) {
	var v core.CreditLineValues
	if err := c.get(ctx, marketPath(market, "credit-line", account), &v); err != nil {
		return nil, err
	}

	return &v, nil
}

func (c *Client) TokensBalance(ctx context.Context, market, account string) (*core.TokensBalance, error) {
	var v core.TokensBalance
	if err := c.get(ctx, marketPath(market, "balances", account), &v); err != nil {
		return nil, err
	}

	return &v, nil
}

func (c *Client) PriceLocalPerCommon(ctx context.Context, market string) (decimal.Decimal, error) {
	var v struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := c.get(ctx, marketPath(market, "price"), &v); err != nil {
		return decimal.Zero, err
	}

	return v.Rate, nil
}

func (c *Client) Configuration(ctx context.Context, market string) (*core.MarketConfiguration, error) {
	var v core.MarketConfiguration
	if err := c.get(ctx, marketPath(market, "config"), &v); err != nil {
		return nil, err
	}

	return &v, nil
}

// Execute the gateway applies the batch atomically
func (c *Client) Execute(ctx context.Context, msgs []*core.MarketMsg) ([]*core.MarketEntry, error) {
	var v struct {
		Entries []*core.MarketEntry `json:"entries"`
	}

	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.
		SetBody(map[string]interface{}{"msgs": msgs}).
		Post("/execute")
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("POST /execute")
		return nil, errors.Wrap(err, "POST /execute")
	}

	if err := resthttp.ParseResponse(resp, &v); err != nil {
		return nil, err
	}

	return v.Entries, nil
}

func (c *Client) Pending(ctx context.Context, limit int) ([]*core.InstantiateReply, error) {
	var replies []*core.InstantiateReply
	if err := c.get(ctx, "/instantiations?limit="+strconv.Itoa(limit), &replies); err != nil {
		return nil, err
	}

	return replies, nil
}

func (c *Client) Ack(ctx context.Context, id uint64) error {
	path := "/instantiations/" + strconv.FormatUint(id, 10)
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.Delete(path)
	if err != nil {
		return errors.Wrapf(err, "DELETE %s", path)
	}

	return resthttp.ParseResponse(resp, nil)
}
