// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"

	assetsfeature "github.com/dalemusser/assethub/internal/app/features/assets"
	dashboardfeature "github.com/dalemusser/assethub/internal/app/features/dashboard"
	documentsfeature "github.com/dalemusser/assethub/internal/app/features/documents"
	healthfeature "github.com/dalemusser/assethub/internal/app/features/health"
	licensesfeature "github.com/dalemusser/assethub/internal/app/features/licenses"
	organizationsfeature "github.com/dalemusser/assethub/internal/app/features/organizations"
	peoplefeature "github.com/dalemusser/assethub/internal/app/features/people"
	teamsfeature "github.com/dalemusser/assethub/internal/app/features/teams"
	"github.com/dalemusser/assethub/internal/app/system/orgsession"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so the data layer built in Startup is
// ready to mount features on. Secure cookies are enabled in production mode.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if data == nil {
		return nil, fmt.Errorf("bootstrap: data layer not initialized (Startup did not run)")
	}

	secure := coreCfg.Env == "prod"
	sessionMgr, err := orgsession.NewManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Make the client's remembered organization selection available to all
	// handlers via orgsession.FromContext.
	r.Use(sessionMgr.LoadSelectedOrg)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	orgHandler := organizationsfeature.NewHandler(data.organizations, data.scope, sessionMgr, logger)
	r.Mount("/organizations", organizationsfeature.Routes(orgHandler))

	dashboardHandler := dashboardfeature.NewHandler(data.dashboard, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

	peopleHandler := peoplefeature.NewHandler(data.people, logger)
	r.Mount("/people", peoplefeature.Routes(peopleHandler))

	teamsHandler := teamsfeature.NewHandler(data.teams, logger)
	r.Mount("/teams", teamsfeature.Routes(teamsHandler))

	licensesHandler := licensesfeature.NewHandler(data.licenses, logger)
	r.Mount("/licenses", licensesfeature.Routes(licensesHandler))

	assetsHandler := assetsfeature.NewHandler(data.assets, logger)
	r.Mount("/assets", assetsfeature.Routes(assetsHandler))

	documentsHandler := documentsfeature.NewHandler(data.documents, logger)
	r.Mount("/documents", documentsfeature.Routes(documentsHandler))

	return r, nil
}
