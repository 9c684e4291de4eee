// Package docs Alisto API.
//
// Documentation of the Alisto emergency reporting API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://api.alisto.app
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/alisto-app/alisto-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /api/v1/report report createReport
// Files a new emergency report.
// responses:
//   201: reportResponse

// A single emergency report.
// swagger:response reportResponse
type reportResponseWrapper struct {
	// in:body
	Body models.EmergencyReport
}

// swagger:route GET /api/v1/report/{report_id} report reportByID
// Gets a single emergency report by ID.
// responses:
//   200: reportResponse

// swagger:route POST /api/v1/report/{report_id}/trigger-crowdsourcing crowdsource triggerCrowdsourcing
// Opens a crowdsource broadcast window for a report.
// responses:
//   200: broadcastResponse

// The broadcast targets and notified agencies.
// swagger:response broadcastResponse
type broadcastResponseWrapper struct {
	// in:body
	Body models.CrowdsourceBroadcast
}

// swagger:route POST /api/v1/verifications verification submitVerification
// Records a user's vote on whether a reported emergency is real.
// responses:
//   201: verificationResponse

// A single crowdsource verification vote.
// swagger:response verificationResponse
type verificationResponseWrapper struct {
	// in:body
	Body models.Verification
}
