package config

import (
	"time"

	"github.com/spf13/viper"
)

type CloudTasks struct {
	// Tasks API url
	ApiUrl string

	// Queue coordinates, together they form the queue path
	Project  string
	Location string
	Queue    string

	// Bearer token used to authenticate against the tasks API
	AuthToken string

	// Max time one enqueue may take
	RequestTimeout time.Duration
}

// Queue path in the form expected by the tasks API
func (self *CloudTasks) QueuePath() string {
	return "projects/" + self.Project + "/locations/" + self.Location + "/queues/" + self.Queue
}

func setCloudTasksDefaults() {
	viper.SetDefault("CloudTasks.ApiUrl", "https://cloudtasks.googleapis.com/v2")
	viper.SetDefault("CloudTasks.Project", "")
	viper.SetDefault("CloudTasks.Location", "us-central1")
	viper.SetDefault("CloudTasks.Queue", "nft-transaction-tasks")
	viper.SetDefault("CloudTasks.AuthToken", "")
	viper.SetDefault("CloudTasks.RequestTimeout", "10s")
}
