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

type groupMission struct {
	container *do.Injector
}

// serviceAndUser resolves the mission service and the calling user, the
// prelude of every mission route.
func (gr *groupMission) serviceAndUser(c echo.Context) (*services.ServiceMission, string, error) {
	serviceMission, err := do.Invoke[*services.ServiceMission](gr.container)
	if err != nil {
		return nil, "", errorx.Wrap(err, errorx.Service)
	}

	user, err := ResolveValidUser(c.Request().Context(), gr.container)
	if err != nil {
		return nil, "", err
	}
	return serviceMission, user.ID, nil
}

func missionParam(c echo.Context) (string, error) {
	missionID := c.Param("mission")
	if missionID == "" || missionID == "undefined" {
		return "", errorx.Wrap(errors.New("mission is required"), errorx.Invalid)
	}
	return missionID, nil
}

func (gr *groupMission) List(c echo.Context) error {
	serviceMission, userID, err := gr.serviceAndUser(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	missions, err := serviceMission.ListMissions(c.Request().Context(), userID)
	return abort(c, missions, err)
}

func (gr *groupMission) Generate(c echo.Context) error {
	serviceMission, userID, err := gr.serviceAndUser(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	missions, err := serviceMission.GenerateMissions(c.Request().Context(), userID)
	return abort(c, missions, err)
}

func (gr *groupMission) Reset(c echo.Context) error {
	serviceMission, userID, err := gr.serviceAndUser(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	daily, err := serviceMission.ResetDailyMissions(c.Request().Context(), userID)
	return abort(c, daily, err)
}

func (gr *groupMission) Start(c echo.Context) error {
	serviceMission, userID, err := gr.serviceAndUser(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	missionID, err := missionParam(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	userMission, err := serviceMission.StartMission(c.Request().Context(), userID, missionID)
	return abort(c, userMission, err)
}

func (gr *groupMission) Complete(c echo.Context) error {
	serviceMission, userID, err := gr.serviceAndUser(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	missionID, err := missionParam(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	result, err := serviceMission.CompleteMission(c.Request().Context(), userID, missionID)
	return abort(c, result, err)
}

func (gr *groupMission) Active(c echo.Context) error {
	serviceMission, userID, err := gr.serviceAndUser(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	userMission, err := serviceMission.GetActiveMission(c.Request().Context(), userID)
	return abort(c, userMission, err)
}

func (gr *groupMission) History(c echo.Context) error {
	serviceMission, userID, err := gr.serviceAndUser(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	userMissions, err := serviceMission.ListUserMissions(c.Request().Context(), userID, c.QueryParam("status"))
	return abort(c, userMissions, err)
}

func (gr *groupMission) CompleteStep(c echo.Context) error {
	serviceMission, userID, err := gr.serviceAndUser(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	stepNumber, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("step must be a number"), errorx.Invalid))
	}

	step, err := serviceMission.CompleteStep(c.Request().Context(), userID, c.Param("userMission"), stepNumber)
	return abort(c, step, err)
}

func (gr *groupMission) DailyBrief(c echo.Context) error {
	serviceMission, userID, err := gr.serviceAndUser(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	brief, err := serviceMission.GetDailyBrief(c.Request().Context(), userID)
	return abort(c, brief, err)
}
