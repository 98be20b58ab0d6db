package handler

import (
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"

	"lifequest/internal/models"
	"lifequest/internal/services"
)

type groupUser struct {
	container *do.Injector
}

type meResponse struct {
	*services.Me
	Token string `json:"token"`
}

func (gr *groupUser) Me(c echo.Context) error {
	ctx := c.Request().Context()

	// find user in system. If not create new user
	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	authentication, err := do.Invoke[*services.Authentication](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	me, err := serviceUser.Me(ctx, user.ID)
	if err != nil {
		return abort(c, nil, err)
	}

	// refreshed on every call so active clients never expire
	token, err := authentication.CreateToken(&models.UserFromAuth{ID: user.ID, Username: user.Username}, time.Now())
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, meResponse{Me: me, Token: token}, nil)
}

func (gr *groupUser) UpsertProfile(c echo.Context) error {
	serviceProfile, err := do.Invoke[*services.ServiceProfile](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var input models.Profile
	if err := c.Bind(&input); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	profile, err := serviceProfile.UpsertProfile(ctx, user.ID, &input)
	if err != nil {
		return abort(c, nil, err)
	}

	return httpx.RestAbort(c, profile, nil)
}

func (gr *groupUser) Achievements(c echo.Context) error {
	serviceAchievement, err := do.Invoke[*services.ServiceAchievement](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	achievements, err := serviceAchievement.ListUserAchievements(ctx, user.ID)
	if err != nil {
		return abort(c, nil, err)
	}

	return httpx.RestAbort(c, achievements, nil)
}
