package middleware

import (
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/rasadhq/rasad/internal/queue"
	"github.com/rasadhq/rasad/pkg/analysis"
	"github.com/rasadhq/rasad/pkg/brain"
	"github.com/rasadhq/rasad/pkg/cache"
	"github.com/rasadhq/rasad/pkg/store"
)

// App carries the shared dependencies every handler reaches through the
// request context.
type App struct {
	DBConn *pgxpool.Pool
	Queue  *amqp091.Channel

	Analyses    store.AnalysisStore
	Results     store.ResultStore
	Posts       store.PostStore
	Graph       store.GraphStore
	Trends      store.TrendStore
	Authors     store.AuthorStore
	DataSources store.DataSourceStore
	Dashboards  store.DashboardStore
	Users       store.UserStore

	Orchestrator *analysis.Orchestrator
	Publisher    *queue.Publisher
	Brain        *brain.Client
	Cache        cache.ProgressCache
}

// AppContext wraps the echo context with the app dependencies and the
// calling user. Authentication lives outside this service; the user id is
// taken from the X-User-ID header for ownership tracking and is zero when
// the header is absent.
type AppContext struct {
	echo.Context
	App    *App
	UserID int64
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := strconv.ParseInt(c.Request().Header.Get("X-User-ID"), 10, 64)
			cc := &AppContext{c, app, userID}
			return next(cc)
		}
	}
}
