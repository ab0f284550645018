package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/one-of-one-tools/marketsync/src/utils/config"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
)

// ErrChannelNotFound means the channel doesn't exist or belongs to a
// different guild than the subscription claims
var ErrChannelNotFound = errors.New("channel not found")

type Channel struct {
	Id      string `json:"id"`
	GuildId string `json:"guild_id"`
	Name    string `json:"name"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Url         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedImage struct {
	Url string `json:"url"`
}

type Client struct {
	httpClient *resty.Client
	config     *config.Discord
	log        *logrus.Entry
}

type createMessageRequest struct {
	Embeds []*Embed `json:"embeds"`
}

func NewClient(config *config.Discord) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("discord-client")
	self.httpClient = resty.New().
		SetBaseURL(config.ApiUrl).
		SetTimeout(config.RequestTimeout).
		SetHeader("Authorization", "Bot "+config.BotToken)
	return
}

// GetChannel fetches the channel and verifies it belongs to the given guild
func (self *Client) GetChannel(ctx context.Context, guildId, channelId string) (channel *Channel, err error) {
	channel = new(Channel)
	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetResult(channel).
		Get(fmt.Sprintf("/channels/%s", channelId))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, ErrChannelNotFound
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("failed to get channel, status %d: %s", resp.StatusCode(), resp.String())
	}
	if channel.GuildId != guildId {
		return nil, ErrChannelNotFound
	}
	return
}

func (self *Client) SendEmbed(ctx context.Context, channelId string, embed *Embed) (err error) {
	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetBody(createMessageRequest{Embeds: []*Embed{embed}}).
		Post(fmt.Sprintf("/channels/%s/messages", channelId))
	if err != nil {
		return
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("failed to send embed, status %d: %s", resp.StatusCode(), resp.String())
	}
	return
}
