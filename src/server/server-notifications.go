package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/one-of-one-tools/marketsync/src/events"
	"github.com/one-of-one-tools/marketsync/src/server/request"
	"github.com/one-of-one-tools/marketsync/src/server/response"
	"github.com/one-of-one-tools/marketsync/src/utils/discord"
	. "github.com/one-of-one-tools/marketsync/src/utils/logger"
	"github.com/one-of-one-tools/marketsync/src/utils/model"
)

var errInvalidMint = errors.New("mint is not a valid address")

// scopeResolver maps a request onto a subscription scope, either the
// boutique-wide one or a single mint
type scopeResolver func(c *gin.Context, mint string) (string, error)

func scopeFromBoutique(c *gin.Context, mint string) (string, error) {
	return model.ScopeBoutique, nil
}

func scopeFromMint(c *gin.Context, mint string) (string, error) {
	if mint == "" {
		mint = c.Query("mint")
	}
	if !events.IsValidAddress(mint) {
		return "", errInvalidMint
	}
	return mint, nil
}

func userId(c *gin.Context) string {
	return c.GetHeader("X-User-Id")
}

func (self *Server) onGetSubscriptions(resolve scopeResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := userId(c)
		if user == "" {
			LOGE(c, nil, http.StatusUnauthorized).Error("Missing user id")
			return
		}

		scope, err := resolve(c, "")
		if err != nil {
			LOGE(c, err, http.StatusBadRequest).Error("Failed to resolve scope")
			return
		}

		out := response.Subscriptions{Success: true}

		dialectSubscriptions, err := self.store.GetDialectSubscriptionsByUser(c.Request.Context(), user)
		if err != nil {
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to load dialect subscriptions")
			return
		}
		for _, subscription := range dialectSubscriptions {
			if subscription.Scope == scope {
				out.Dialect = &response.DialectSubscription{DeliveryAddress: subscription.DeliveryAddress}
			}
		}

		discordSubscriptions, err := self.store.GetDiscordSubscriptionsByUser(c.Request.Context(), user)
		if err != nil {
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to load discord subscriptions")
			return
		}
		for _, subscription := range discordSubscriptions {
			if subscription.Scope == scope {
				out.Discord = &response.DiscordSubscription{GuildId: subscription.GuildId, ChannelId: subscription.ChannelId}
			}
		}

		c.JSON(http.StatusOK, out)
	}
}

func (self *Server) onSetSubscription(resolve scopeResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := userId(c)
		if user == "" {
			LOGE(c, nil, http.StatusUnauthorized).Error("Missing user id")
			return
		}

		var in request.SetSubscription
		err := c.ShouldBindJSON(&in)
		if err != nil {
			LOGE(c, err, http.StatusBadRequest).Error("Failed to parse subscription request")
			return
		}

		scope, err := resolve(c, in.Mint)
		if err != nil {
			LOGE(c, err, http.StatusBadRequest).Error("Failed to resolve scope")
			return
		}

		switch in.Channel {
		case request.ChannelDialect:
			err = self.setDialectSubscription(c, user, scope, &in)
		case request.ChannelDiscord:
			err = self.setDiscordSubscription(c, user, scope, &in)
		default:
			LOGE(c, nil, http.StatusBadRequest).
				WithField("channel", in.Channel).
				Error("Unknown channel")
			return
		}
		if err != nil {
			// Status already written by the channel-specific step
			return
		}

		c.JSON(http.StatusCreated, response.Status{Success: true})
	}
}

func (self *Server) setDialectSubscription(c *gin.Context, user, scope string, in *request.SetSubscription) (err error) {
	if !*in.Enabled {
		err = self.store.RemoveDialectSubscription(c.Request.Context(), user, scope)
		if err != nil {
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to remove dialect subscription")
		}
		return
	}

	if !events.IsValidAddress(in.DeliveryAddress) {
		LOGE(c, nil, http.StatusBadRequest).Error("Delivery address is not a valid address")
		return errInvalidMint
	}

	err = self.store.SetDialectSubscription(c.Request.Context(), &model.DialectSubscription{
		UserId:          user,
		Scope:           scope,
		DeliveryAddress: in.DeliveryAddress,
	})
	if err != nil {
		LOGE(c, err, http.StatusInternalServerError).Error("Failed to store dialect subscription")
	}
	return
}

func (self *Server) setDiscordSubscription(c *gin.Context, user, scope string, in *request.SetSubscription) (err error) {
	if !*in.Enabled {
		err = self.store.RemoveDiscordSubscription(c.Request.Context(), user, scope)
		if err != nil {
			LOGE(c, err, http.StatusInternalServerError).Error("Failed to remove discord subscription")
		}
		return
	}

	if in.GuildId == "" || in.ChannelId == "" {
		LOGE(c, nil, http.StatusBadRequest).Error("Missing guild or channel id")
		return errors.New("missing guild or channel id")
	}

	if self.verifier != nil {
		_, err = self.verifier.GetChannel(c.Request.Context(), in.GuildId, in.ChannelId)
		if err != nil {
			if errors.Is(err, discord.ErrChannelNotFound) {
				LOGE(c, err, http.StatusBadRequest).Error("Channel does not exist in the guild")
			} else {
				LOGE(c, err, http.StatusInternalServerError).Error("Failed to verify channel")
			}
			return
		}
	}

	err = self.store.SetDiscordSubscription(c.Request.Context(), &model.DiscordSubscription{
		UserId:    user,
		Scope:     scope,
		GuildId:   in.GuildId,
		ChannelId: in.ChannelId,
	})
	if err != nil {
		LOGE(c, err, http.StatusInternalServerError).Error("Failed to store discord subscription")
	}
	return
}
