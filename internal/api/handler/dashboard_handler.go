package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// Show returns the resolved user and the sections their role may open.
//
// @Summary      Dashboard
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Success      302  "redirect to /login when the session is missing or rejected"
// @Router       /dashboard [get]
func (h *DashboardHandler) Show(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	tabs := user.Tabs()
	names := make([]string, len(tabs))
	for i, t := range tabs {
		names[i] = string(t)
	}
	return c.JSON(http.StatusOK, dashboardResponse{User: toUserResponse(user), Tabs: names})
}

type welcomeResponse struct {
	Name  string `json:"name"`
	Login string `json:"login"`
}

// Welcome
//
// @Summary      Landing page
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  welcomeResponse
// @Router       / [get]
func (h *DashboardHandler) Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, welcomeResponse{Name: "AtongAni", Login: loginPath})
}
