package handler

import (
	"net/http"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"

	"lifequest/internal/services"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == services.SERVER_MODE_DEBUG {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🧭")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.
		routesAPIv1.GET("", Hello)

		routesAPIv1User := routesAPIv1.Group("/user")
		{
			u := groupUser{cfg.Container}
			routesAPIv1User.GET("/me", u.Me)
			routesAPIv1User.PUT("/profile", u.UpsertProfile)
			routesAPIv1User.GET("/achievements", u.Achievements)
		}

		routesAPIv1Missions := routesAPIv1.Group("/missions")
		{
			m := groupMission{cfg.Container}
			routesAPIv1Missions.GET("", m.List)
			routesAPIv1Missions.POST("/generate", m.Generate)
			routesAPIv1Missions.POST("/reset", m.Reset)
			routesAPIv1Missions.GET("/active", m.Active)
			routesAPIv1Missions.GET("/history", m.History)
			routesAPIv1Missions.GET("/brief", m.DailyBrief)
			routesAPIv1Missions.POST("/:mission/start", m.Start)
			routesAPIv1Missions.POST("/:mission/complete", m.Complete)
			routesAPIv1Missions.POST("/user-missions/:userMission/steps/:step/complete", m.CompleteStep)
		}

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard/xp", l.GetXPLeaderboard)

		s := groupScenario{cfg.Container}
		routesAPIv1.POST("/scenarios/predict", s.Predict)
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
