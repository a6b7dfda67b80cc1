package httpapi

func (s *Server) routes() {
	s.app.Use(s.requestLogger)

	api := s.app.Group("/api/v1")
	api.Get("/healthcheck", s.healthcheck)

	u := api.Group("/users")
	u.Post("/register", s.register)
	u.Post("/login", s.login)
	u.Post("/refresh-token", s.refreshToken)

	// guarded routes
	u.Post("/logout", s.RequireAuth, s.logout)
	u.Post("/change-password", s.RequireAuth, s.changePassword)
	u.Get("/current-user", s.RequireAuth, s.currentUser)
	u.Patch("/update-account", s.RequireAuth, s.updateAccount)
	u.Patch("/avatar", s.RequireAuth, s.updateAvatar)
	u.Patch("/cover-image", s.RequireAuth, s.updateCoverImage)
}
