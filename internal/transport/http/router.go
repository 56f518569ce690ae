package httpserver

import (
	"github.com/agrifarma/platform/internal/handlers"
	"github.com/agrifarma/platform/internal/handlers/cart"
	"github.com/agrifarma/platform/internal/models"
	"github.com/agrifarma/platform/internal/service/token"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type Deps struct {
	DB                  *gorm.DB
	AuthHandler         *handlers.AuthHandler
	ProductHandler      *handlers.ProductHandler
	BlogHandler         *handlers.BlogHandler
	ForumHandler        *handlers.ForumHandler
	ExpertHandler       *handlers.ExpertHandler
	ConsultationHandler *handlers.ConsultationHandler
	SearchHandler       *handlers.SearchHandler
	ChatHandler         *handlers.ChatHandler
	CartHandler         *cart.CartHandler
	TokenService        *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)

	v1.GET("/search", d.SearchHandler.Search)
	v1.POST("/chat", d.ChatHandler.Chat)

	v1.GET("/products", d.ProductHandler.GetProducts)
	v1.GET("/products/:id", d.ProductHandler.GetProduct)

	v1.GET("/blogs", d.BlogHandler.GetBlogs)
	v1.GET("/blogs/:id", d.BlogHandler.GetBlog)

	v1.GET("/forum", d.ForumHandler.GetPosts)
	v1.GET("/forum/:id", d.ForumHandler.GetPost)

	v1.GET("/experts", d.ExpertHandler.GetExperts)
	v1.GET("/experts/:id", d.ExpertHandler.GetExpert)

	auth := v1.Group("", d.TokenService.AutoRefreshMiddleware)

	auth.POST("/products", d.ProductHandler.CreateProduct)
	auth.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	auth.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	auth.POST("/blogs", d.BlogHandler.CreateBlog)
	auth.DELETE("/blogs/:id", d.BlogHandler.DeleteBlog)

	auth.POST("/forum", d.ForumHandler.CreatePost)
	auth.DELETE("/forum/:id", d.ForumHandler.DeletePost)
	auth.POST("/forum/:id/replies", d.ForumHandler.CreateReply)
	auth.POST("/forum/:id/like", d.ForumHandler.LikePost)
	auth.POST("/replies/:id/like", d.ForumHandler.LikeReply)

	auth.POST("/consultations", d.ConsultationHandler.CreateConsultation)
	auth.GET("/consultations", d.ConsultationHandler.GetConsultations)
	auth.GET("/consultations/:id", d.ConsultationHandler.GetConsultation)

	auth.GET("/cart", d.CartHandler.GetCart)
	auth.POST("/cart", d.CartHandler.AddToCart)
	auth.PATCH("/cart/:id", d.CartHandler.UpdateItem)
	auth.DELETE("/cart/:id", d.CartHandler.RemoveItem)
	auth.POST("/cart/order", d.CartHandler.PlaceOrder)
	auth.GET("/orders", d.CartHandler.GetOrders)
	auth.GET("/orders/:id", d.CartHandler.GetOrder)

	experts := v1.Group("/expert",
		d.TokenService.AutoRefreshMiddlewareRole(models.RoleExpert, models.RoleAdmin))
	experts.POST("/consultations/:id/response", d.ConsultationHandler.Respond)

	admin := v1.Group("/admin",
		d.TokenService.AutoRefreshMiddlewareRole(models.RoleAdmin))
	admin.POST("/users/:id/promote", d.ExpertHandler.PromoteUser)
	admin.POST("/users/:id/demote", d.ExpertHandler.DemoteUser)
	admin.DELETE("/blogs/:id", d.BlogHandler.DeleteBlog)
	admin.DELETE("/forum/:id", d.ForumHandler.DeletePost)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
}
