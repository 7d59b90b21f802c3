package service

// Broadcaster pushes events to connected dashboards (implemented by the WebSocket hub)
type Broadcaster interface {
	BroadcastToSurvey(surveyID string, msgType string, payload interface{})
	DisconnectSurvey(surveyID string)
}
