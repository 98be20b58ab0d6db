package handler

import (
	"errors"
	"strconv"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"

	"lifequest/internal/services"
)

type groupLeaderboard struct {
	container *do.Injector
}

func (gr *groupLeaderboard) GetXPLeaderboard(c echo.Context) error {
	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("limit must be a number"), errorx.Invalid))
		}
	}

	leaderboard, err := serviceLeaderboard.GetXPLeaderboard(ctx, user, limit)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, leaderboard, nil)
}
