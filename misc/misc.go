package misc

import (
	"os"

	"github.com/google/uuid"
)

type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

var serviceInstance = uuid.New().String()

func GetServiceName() string {
	name := os.Getenv("SERVICE_NAME")
	if name == "" {
		return "activityflow"
	}
	return name
}

func GetServiceInstance() string {
	return serviceInstance
}
