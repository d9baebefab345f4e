// internal/domain/models/stats.go
package models

// DashboardStats are the headline counts shown on the dashboard for the
// active organization.
type DashboardStats struct {
	TotalPeople    int `json:"totalPeople"`
	TotalTeams     int `json:"totalTeams"`
	TotalAssets    int `json:"totalAssets"`
	TotalLicenses  int `json:"totalLicenses"`
	AvailableSeats int `json:"availableSeats"`
	AssignedAssets int `json:"assignedAssets"`
}
