package controllers

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/tomato/pkg/response"
)

var bootTime = time.Now()

type HealthController struct{}

func NewHealthController() *HealthController { return &HealthController{} }

// Check always reports UP while the process is serving; it does not probe
// the database.
func (c *HealthController) Check(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]interface{}{
		"status":    "UP",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(bootTime).Round(time.Second).String(),
	})
}
