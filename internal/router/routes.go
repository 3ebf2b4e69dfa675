package router

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/naveenspark/mdd/internal/guard"
)

// Screen names.
const (
	Home          = "home"
	Register      = "register"
	Login         = "login"
	Articles      = "articles"
	ArticleDetail = "article-detail"
	NewArticle    = "new-article"
	Themes        = "themes"
	Me            = "me"
)

// Paths that screens navigate to directly.
const (
	HomePath     = guard.HomePath
	RegisterPath = "/register"
	LoginPath    = "/connexion"
	ArticlesPath = "/articles"
	ArticlePath  = "/article"
	ThemesPath   = "/themes"
	MePath       = "/me"
)

// ArticleDetailPath returns the path of one article.
func ArticleDetailPath(id int64) string {
	return ArticlePath + "/" + strconv.FormatInt(id, 10)
}

// AppRoutes is the application's route table. The guards redirect through
// nav, which is normally the Router the routes are added to.
func AppRoutes(session guard.Session, nav guard.Navigator, log logrus.FieldLogger) []Route {
	authed := guard.Authenticated(session, nav, log)
	anon := guard.Unauthenticated(session, nav, log)
	return []Route{
		{Pattern: RegisterPath, Name: Register, Guards: []guard.Guard{anon}},
		{Pattern: HomePath, Name: Home},
		{Pattern: LoginPath, Name: Login, Guards: []guard.Guard{anon}},
		{Pattern: ArticlesPath, Name: Articles, Guards: []guard.Guard{authed}},
		{Pattern: ArticlePath + "/:id", Name: ArticleDetail, Guards: []guard.Guard{authed}},
		{Pattern: ArticlePath, Name: NewArticle, Guards: []guard.Guard{authed}},
		{Pattern: ThemesPath, Name: Themes, Guards: []guard.Guard{authed}},
		{Pattern: MePath, Name: Me, Guards: []guard.Guard{authed}},
	}
}
