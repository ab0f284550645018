package dialect

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/one-of-one-tools/marketsync/src/utils/config"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
)

type Thread struct {
	Id string `json:"id"`
}

type Client struct {
	httpClient *resty.Client
	config     *config.Dialect
	log        *logrus.Entry
}

type createThreadRequest struct {
	Members []threadMember `json:"members"`
}

type threadMember struct {
	Address string   `json:"address"`
	Scopes  []string `json:"scopes"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func NewClient(config *config.Dialect) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("dialect-client")
	self.httpClient = resty.New().
		SetBaseURL(config.ApiUrl).
		SetTimeout(config.RequestTimeout).
		SetHeader("Authorization", "Basic "+config.ApiKey)
	return
}

// FindOrCreateThread returns the messaging thread with the given wallet,
// creating one when none exists yet
func (self *Client) FindOrCreateThread(ctx context.Context, deliveryAddress string) (thread *Thread, isNew bool, err error) {
	thread = new(Thread)
	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetResult(thread).
		Get(fmt.Sprintf("/v1/dialects/members/%s", deliveryAddress))
	if err != nil {
		return nil, false, err
	}

	if resp.IsSuccess() {
		return
	}
	if resp.StatusCode() != http.StatusNotFound {
		return nil, false, fmt.Errorf("failed to find thread, status %d: %s", resp.StatusCode(), resp.String())
	}

	thread = new(Thread)
	resp, err = self.httpClient.R().
		SetContext(ctx).
		SetBody(createThreadRequest{
			Members: []threadMember{
				{Address: deliveryAddress, Scopes: []string{"WRITE"}},
			},
		}).
		SetResult(thread).
		Post("/v1/dialects")
	if err != nil {
		return nil, false, err
	}
	if !resp.IsSuccess() {
		return nil, false, fmt.Errorf("failed to create thread, status %d: %s", resp.StatusCode(), resp.String())
	}

	isNew = true
	return
}

func (self *Client) SendMessage(ctx context.Context, thread *Thread, text string) (err error) {
	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{Text: text}).
		Post(fmt.Sprintf("/v1/dialects/%s/messages", thread.Id))
	if err != nil {
		return
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("failed to send message, status %d: %s", resp.StatusCode(), resp.String())
	}
	return
}
