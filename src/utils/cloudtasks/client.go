package cloudtasks

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/one-of-one-tools/marketsync/src/utils/config"
	"github.com/one-of-one-tools/marketsync/src/utils/logger"
)

// ErrTaskAlreadyExists means a task with the same name was already created.
// Names are deterministic, so this is the dedup signal, not a failure.
var ErrTaskAlreadyExists = errors.New("task already exists")

type Client struct {
	httpClient *resty.Client
	config     *config.CloudTasks
	log        *logrus.Entry
}

type httpRequest struct {
	Url        string            `json:"url"`
	HttpMethod string            `json:"httpMethod"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body,omitempty"`
}

type taskPayload struct {
	Name        string       `json:"name"`
	HttpRequest *httpRequest `json:"httpRequest"`
}

type createTaskRequest struct {
	Task *taskPayload `json:"task"`
}

func NewClient(config *config.CloudTasks) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("cloudtasks-client")
	self.httpClient = resty.New().
		SetBaseURL(config.ApiUrl).
		SetTimeout(config.RequestTimeout).
		SetAuthToken(config.AuthToken)
	return
}

// QueuePath returns the fully qualified queue this client enqueues into
func (self *Client) QueuePath() string {
	return self.config.QueuePath()
}

// CreateTask enqueues one HTTP task. The name must be relative to the queue,
// the body is base64 encoded as the API requires.
func (self *Client) CreateTask(ctx context.Context, name, callbackUrl string, headers map[string]string, body []byte) (err error) {
	payload := createTaskRequest{
		Task: &taskPayload{
			Name: fmt.Sprintf("%s/tasks/%s", self.config.QueuePath(), name),
			HttpRequest: &httpRequest{
				Url:        callbackUrl,
				HttpMethod: "POST",
				Headers:    headers,
				Body:       base64.StdEncoding.EncodeToString(body),
			},
		},
	}

	resp, err := self.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(fmt.Sprintf("/%s/tasks", self.config.QueuePath()))
	if err != nil {
		return
	}

	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == http.StatusConflict:
		return ErrTaskAlreadyExists
	default:
		return fmt.Errorf("failed to create task, status %d: %s", resp.StatusCode(), resp.String())
	}
}
