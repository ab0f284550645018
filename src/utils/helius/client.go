package helius

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/one-of-one-tools/marketsync/src/utils/config"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
)

var ErrNoVerifiedCreator = errors.New("mint has no verified creator")

// Client talks to the NFT events API
type Client struct {
	httpClient *resty.Client
	config     *config.Helius
	log        *logrus.Entry
}

func NewClient(config *config.Helius) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("helius")
	self.httpClient = resty.New().
		SetBaseURL(config.ApiUrl).
		SetTimeout(config.RequestTimeout).
		SetQueryParam("api-key", config.ApiKey).
		SetHeader("Accept", "application/json")
	return
}

// FetchEventsPage downloads one page of historical events.
// The returned cursor is opaque, an empty cursor means there are no more pages.
func (self *Client) FetchEventsPage(ctx context.Context, query *EventsQuery, cursor string) (page *EventsPage, err error) {
	options := queryOptions{
		Limit:           self.config.PageLimit,
		PaginationToken: cursor,
	}

	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetResult(eventsResponse{}).
		ForceContentType("application/json").
		SetBody(eventsRequest{Query: *query, Options: options}).
		Post("/v1/nft-events")
	if err != nil {
		return
	}

	if !resp.IsSuccess() {
		self.log.WithField("statusCode", resp.StatusCode()).Warn("Events page request has not been successful")
		err = fmt.Errorf("events request failed with status %d", resp.StatusCode())
		return
	}

	out, ok := resp.Result().(*eventsResponse)
	if !ok {
		err = errors.New("failed to parse events response")
		return
	}
	if out.Error != "" {
		err = errors.New(out.Error)
		return
	}

	page = &EventsPage{
		Events:     out.Result,
		NextCursor: out.PaginationToken,
	}
	return
}

// ResolveCollectionFilters looks up the verified collection address and the
// first verified creator of a mint. Used once per collection, the result is
// cached in the collection record afterwards.
func (self *Client) ResolveCollectionFilters(ctx context.Context, mint string) (collectionAddress string, firstVerifiedCreator string, err error) {
	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetResult([]tokenMetadata{}).
		ForceContentType("application/json").
		SetBody(tokenMetadataRequest{MintAccounts: []string{mint}}).
		Post("/v0/token-metadata")
	if err != nil {
		return
	}

	if !resp.IsSuccess() {
		err = fmt.Errorf("token metadata request failed with status %d", resp.StatusCode())
		return
	}

	out, ok := resp.Result().(*[]tokenMetadata)
	if !ok || len(*out) == 0 {
		err = errors.New("failed to parse token metadata response")
		return
	}

	metadata := (*out)[0].OnChainMetadata
	if metadata == nil {
		err = ErrNoVerifiedCreator
		return
	}

	if metadata.Collection != nil && metadata.Collection.Verified {
		collectionAddress = metadata.Collection.Key
	}
	for _, c := range metadata.Creators {
		if c.Verified {
			firstVerifiedCreator = c.Address
			break
		}
	}

	if firstVerifiedCreator == "" {
		err = ErrNoVerifiedCreator
	}
	return
}
