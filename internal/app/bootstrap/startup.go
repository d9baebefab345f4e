// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	assetsdata "github.com/dalemusser/assethub/internal/app/data/assets"
	dashboarddata "github.com/dalemusser/assethub/internal/app/data/dashboard"
	documentsdata "github.com/dalemusser/assethub/internal/app/data/documents"
	licensesdata "github.com/dalemusser/assethub/internal/app/data/licenses"
	organizationsdata "github.com/dalemusser/assethub/internal/app/data/organizations"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	peopledata "github.com/dalemusser/assethub/internal/app/data/people"
	teamsdata "github.com/dalemusser/assethub/internal/app/data/teams"
	assetstore "github.com/dalemusser/assethub/internal/app/store/assets"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	documentstore "github.com/dalemusser/assethub/internal/app/store/documents"
	licensestore "github.com/dalemusser/assethub/internal/app/store/licenses"
	organizationstore "github.com/dalemusser/assethub/internal/app/store/organizations"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	prefsstore "github.com/dalemusser/assethub/internal/app/store/prefs"
	seatstore "github.com/dalemusser/assethub/internal/app/store/seats"
	teamstore "github.com/dalemusser/assethub/internal/app/store/teams"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// dataLayer bundles the scope and the entity accessors built at startup.
// BuildHandler mounts features on top of it; Shutdown tears it down.
type dataLayer struct {
	scope         *orgscope.Scope
	organizations *organizationsdata.Accessor
	people        *peopledata.Accessor
	teams         *teamsdata.Accessor
	licenses      *licensesdata.Accessor
	assets        *assetsdata.Accessor
	documents     *documentsdata.Accessor
	dashboard     *dashboarddata.Accessor
}

var data *dataLayer

// Startup builds the stores, cache, organization scope, and entity
// accessors, then resolves the initial active organization. Accessors are
// created in dependency order: licenses, assets, and documents first so
// the people accessor can borrow their reload hooks for delete cascades,
// people before teams for the same reason.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	orgStore := organizationstore.New(db)
	prefs := prefsstore.New(db)
	people := peoplestore.New(db)
	teams := teamstore.New(db)
	licenses := licensestore.New(db)
	seats := seatstore.New(db)
	assets := assetstore.New(db)
	documents := documentstore.New(db)

	cacheStore := cachestore.New(cachestore.NewMongoKV(db), logger)
	scope := orgscope.New(orgStore, prefs, appCfg.PrefsProfile, appCfg.ScopeMemoTTL, logger)

	licensesAcc := licensesdata.New(licenses, seats, people, scope, cacheStore,
		appCfg.LicensesTTL, appCfg.SeatsTTL, logger)
	assetsAcc := assetsdata.New(assets, people, scope, cacheStore, appCfg.AssetsTTL, logger)
	documentsAcc := documentsdata.New(documents, people, scope, cacheStore,
		appCfg.DocumentsTTL, appCfg.DocumentURLPrefix, logger)

	peopleAcc := peopledata.New(people, seats, assets, documents, teams, scope, cacheStore,
		appCfg.PeopleTTL, peopledata.Cascades{
			Seats:     licensesAcc.ReloadSeats,
			Assets:    assetsAcc.Reload,
			Documents: documentsAcc.Reload,
		}, logger)

	teamsAcc := teamsdata.New(teams, people, scope, cacheStore,
		appCfg.TeamsTTL, peopleAcc.Reload, logger)

	orgsAcc := organizationsdata.New(orgStore, prefs, organizationsdata.Stores{
		People:    people,
		Teams:     teams,
		Licenses:  licenses,
		Seats:     seats,
		Assets:    assets,
		Documents: documents,
	}, scope, cacheStore, appCfg.OrganizationsTTL, logger)

	dashboardAcc := dashboarddata.New(people, teams, licenses, seats, assets, scope)

	// Resolve the persisted selection (or the earliest organization) so
	// the first request already has an active organization. An empty
	// database simply leaves the scope unset.
	if err := scope.Resolve(ctx); err != nil {
		scope.Stop()
		return err
	}

	data = &dataLayer{
		scope:         scope,
		organizations: orgsAcc,
		people:        peopleAcc,
		teams:         teamsAcc,
		licenses:      licensesAcc,
		assets:        assetsAcc,
		documents:     documentsAcc,
		dashboard:     dashboardAcc,
	}
	return nil
}
