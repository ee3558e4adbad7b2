package main

import "net/http"

// healthCheckHandler reports the gateway's build and the resource API it
// forwards to. The resource API itself is not probed.
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"status": "available",
		"system_info": map[string]any{
			"environment": app.config.Environment,
			"version":     app.config.Version,
		},
		"resource_api": map[string]any{
			"base_url": app.config.APIBaseURL,
			"timeout":  app.config.APITimeout.String(),
			"retries":  app.config.RetryMax,
		},
		"rate_limit": map[string]any{
			"enabled": app.config.LimiterEnabled,
			"rps":     app.config.LimiterRPS,
			"burst":   app.config.LimiterBurst,
		},
	}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
