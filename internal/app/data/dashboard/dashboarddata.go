// internal/app/data/dashboard/dashboarddata.go

// Package dashboarddata computes the headline counts for the active
// organization. The counts are cheap index-backed queries, so they are read
// straight from the stores on every request rather than cached.
package dashboarddata

import (
	"context"

	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	assetstore "github.com/dalemusser/assethub/internal/app/store/assets"
	licensestore "github.com/dalemusser/assethub/internal/app/store/licenses"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	seatstore "github.com/dalemusser/assethub/internal/app/store/seats"
	teamstore "github.com/dalemusser/assethub/internal/app/store/teams"
	"github.com/dalemusser/assethub/internal/domain/models"
)

// Accessor aggregates the dashboard counts.
type Accessor struct {
	people   *peoplestore.Store
	teams    *teamstore.Store
	licenses *licensestore.Store
	seats    *seatstore.Store
	assets   *assetstore.Store
	scope    *orgscope.Scope
}

func New(people *peoplestore.Store, teams *teamstore.Store, licenses *licensestore.Store, seats *seatstore.Store, assets *assetstore.Store, scope *orgscope.Scope) *Accessor {
	return &Accessor{
		people:   people,
		teams:    teams,
		licenses: licenses,
		seats:    seats,
		assets:   assets,
		scope:    scope,
	}
}

// Stats returns the counts for the active organization. With no active
// organization every count is zero.
func (a *Accessor) Stats(ctx context.Context) (models.DashboardStats, error) {
	org, ok := a.scope.Current()
	if !ok {
		return models.DashboardStats{}, nil
	}

	people, err := a.people.CountByOrganization(ctx, org.ID)
	if err != nil {
		return models.DashboardStats{}, err
	}
	teams, err := a.teams.CountByOrganization(ctx, org.ID)
	if err != nil {
		return models.DashboardStats{}, err
	}
	licenses, err := a.licenses.CountByOrganization(ctx, org.ID)
	if err != nil {
		return models.DashboardStats{}, err
	}
	licenseIDs, err := a.licenses.IDsByOrganization(ctx, org.ID)
	if err != nil {
		return models.DashboardStats{}, err
	}
	availableSeats, err := a.seats.CountAvailableByLicenses(ctx, licenseIDs)
	if err != nil {
		return models.DashboardStats{}, err
	}
	assets, err := a.assets.CountByOrganization(ctx, org.ID)
	if err != nil {
		return models.DashboardStats{}, err
	}
	assignedAssets, err := a.assets.CountAssignedByOrganization(ctx, org.ID)
	if err != nil {
		return models.DashboardStats{}, err
	}

	return models.DashboardStats{
		TotalPeople:    int(people),
		TotalTeams:     int(teams),
		TotalAssets:    int(assets),
		TotalLicenses:  int(licenses),
		AvailableSeats: int(availableSeats),
		AssignedAssets: int(assignedAssets),
	}, nil
}
