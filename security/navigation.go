package security

import (
	"strings"

	"github.com/teamsales/salesportal/models"
)

// ScreenKey names a screen of the portal. Uppdragsgivare users list the keys
// they may see in menuComponents.
type ScreenKey string

const (
	ScreenProfile ScreenKey = "profile"

	ScreenAdminDashboard     ScreenKey = "admin-dashboard"
	ScreenAdminUsers         ScreenKey = "admin-users"
	ScreenAdminOrganizations ScreenKey = "admin-organizations"
	ScreenAdminStatistics    ScreenKey = "admin-statistics"
	ScreenAdminReports       ScreenKey = "admin-reports"
	ScreenAdminQuality       ScreenKey = "admin-quality"
	ScreenAdminMaterial      ScreenKey = "admin-material"
	ScreenAdminSalesSpecs    ScreenKey = "admin-sales-specifications"
	ScreenManagerDashboard   ScreenKey = "manager-dashboard"
	ScreenManagerTeam        ScreenKey = "manager-team"
	ScreenManagerReport      ScreenKey = "manager-report"
	ScreenManagerReports     ScreenKey = "manager-reports"
	ScreenManagerMaterial    ScreenKey = "manager-material"
	ScreenManagerStatistics  ScreenKey = "manager-statistics"
	ScreenQualityDashboard   ScreenKey = "quality-dashboard"
	ScreenQualityReport      ScreenKey = "quality-report"
	ScreenQualityReports     ScreenKey = "quality-reports"
	ScreenUserDashboard      ScreenKey = "user-dashboard"
	ScreenUserStatistics     ScreenKey = "user-statistics"
	ScreenUserQuality        ScreenKey = "user-quality"
	ScreenUserSalesSpec      ScreenKey = "user-sales-specification"
	ScreenClientDashboard    ScreenKey = "client-dashboard"
	ScreenClientStatistics   ScreenKey = "client-statistics"
	ScreenClientQuality      ScreenKey = "client-quality"
	ScreenClientReports      ScreenKey = "client-reports"
)

// Screen describes one route of the portal and the roles allowed on it.
type Screen struct {
	Key   ScreenKey     `json:"key"`
	Path  string        `json:"path"`
	Title string        `json:"title"`
	Roles []models.Role `json:"-"`
}

// Allows reports whether role is listed on the screen.
func (s Screen) Allows(role models.Role) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	admin   = []models.Role{models.RoleAdmin}
	manager = []models.Role{models.RoleSalesManager}
	quality = []models.Role{models.RoleQuality}
	seller  = []models.Role{models.RoleUser}
	client  = []models.Role{models.RoleUppdragsgivare}
)

// Screens is the route table, in menu order.
var Screens = []Screen{
	{ScreenProfile, "/profile", "Profil", models.AllRoles},

	{ScreenAdminDashboard, "/admin/dashboard", "Översikt", admin},
	{ScreenAdminUsers, "/admin/users", "Användare", admin},
	{ScreenAdminOrganizations, "/admin/organizations", "Organisationer", admin},
	{ScreenAdminStatistics, "/admin/statistics", "Statistik", admin},
	{ScreenAdminReports, "/admin/reports", "Slutrapporter", admin},
	{ScreenAdminQuality, "/admin/quality", "Kvalitet", admin},
	{ScreenAdminMaterial, "/admin/material", "Material", admin},
	{ScreenAdminSalesSpecs, "/admin/sales-specifications", "Säljspecifikationer", admin},

	{ScreenManagerDashboard, "/manager/dashboard", "Översikt", manager},
	{ScreenManagerTeam, "/manager/team", "Mitt team", manager},
	{ScreenManagerReport, "/manager/report", "Ny slutrapport", manager},
	{ScreenManagerReports, "/manager/reports", "Slutrapporter", manager},
	{ScreenManagerMaterial, "/manager/material", "Material", manager},
	{ScreenManagerStatistics, "/manager/statistics", "Statistik", manager},

	{ScreenQualityDashboard, "/quality/dashboard", "Översikt", quality},
	{ScreenQualityReport, "/quality/report", "Ny kvalitetsrapport", quality},
	{ScreenQualityReports, "/quality/reports", "Kvalitetsrapporter", quality},

	{ScreenUserDashboard, "/user/dashboard", "Översikt", seller},
	{ScreenUserStatistics, "/user/statistics", "Statistik", seller},
	{ScreenUserQuality, "/user/quality", "Kvalitet", seller},
	{ScreenUserSalesSpec, "/user/sales-specification", "Säljspecifikation", seller},

	{ScreenClientDashboard, "/client/dashboard", "Översikt", client},
	{ScreenClientStatistics, "/client/statistics", "Statistik", client},
	{ScreenClientQuality, "/client/quality", "Kvalitet", client},
	{ScreenClientReports, "/client/reports", "Rapporter", client},
}

// ScreenByKey looks a screen up by key.
func ScreenByKey(key ScreenKey) (Screen, bool) {
	for _, s := range Screens {
		if s.Key == key {
			return s, true
		}
	}
	return Screen{}, false
}

// ScreenForPath finds the screen serving path. Trailing slashes and query
// strings are ignored.
func ScreenForPath(path string) (Screen, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	for _, s := range Screens {
		if s.Path == path {
			return s, true
		}
	}
	return Screen{}, false
}

// NavigationFor returns the screens user may open, in menu order. Admins see
// their own section only; an uppdragsgivare sees the client screens named in
// menuComponents, and unknown keys there are ignored.
func NavigationFor(user *models.User) []Screen {
	if user == nil || !user.Role.Valid() {
		return nil
	}

	var enabled map[ScreenKey]bool
	if user.Role == models.RoleUppdragsgivare {
		enabled = make(map[ScreenKey]bool, len(user.MenuComponents))
		for _, k := range user.MenuComponents {
			enabled[ScreenKey(k)] = true
		}
		enabled[ScreenProfile] = true
	}

	var out []Screen
	for _, s := range Screens {
		if !s.Allows(user.Role) {
			continue
		}
		if enabled != nil && !enabled[s.Key] {
			continue
		}
		out = append(out, s)
	}
	return out
}

// HomePath is where a freshly signed-in user lands.
func HomePath(user *models.User) string {
	for _, s := range NavigationFor(user) {
		if s.Key != ScreenProfile {
			return s.Path
		}
	}
	return "/profile"
}
