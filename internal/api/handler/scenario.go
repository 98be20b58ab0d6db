package handler

import (
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"

	"lifequest/internal/services"
)

type groupScenario struct {
	container *do.Injector
}

type scenarioRequest struct {
	Scenario string `json:"scenario"`
}

func (gr *groupScenario) Predict(c echo.Context) error {
	serviceScenario, err := do.Invoke[*services.ServiceScenario](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req scenarioRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	result, err := serviceScenario.PredictScenario(ctx, user.ID, req.Scenario)
	return abort(c, result, err)
}
