package routes

import (
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/controllers"
	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	authCtl := controllers.GetAuthController(s)
	streamCtl := controllers.GetStreamController(s)
	memberCtl := controllers.GetMemberController(s)
	inviteCtl := controllers.GetInviteController(s)
	joinCtl := controllers.GetJoinController(s)
	customerCtl := controllers.GetCustomerController(s)
	dealCtl := controllers.GetDealController(s)
	outreachCtl := controllers.GetOutreachController(s)
	taskCtl := controllers.GetTaskController(s)
	eventCtl := controllers.GetEventController(s)

	authMW := app.AuthRequired(a.AppSessions(), s.Repo)
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)
	streamMW := app.StreamRequired(s.Repo, a.ActiveStreams())

	// ------------------------------
	// Auth (public + protected)
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
	}
	authed := auth.Group("", authMW)
	{
		authed.POST("/logout", authCtl.Logout)
		authed.GET("/whoami", authCtl.WhoAmI)
	}

	// ------------------------------
	// Invitation redemption links
	// ------------------------------
	r.GET("/join/:streamId/:token", joinCtl.Preview)
	r.POST("/join/:streamId/:token/accept", authMW, joinCtl.Accept)

	// ------------------------------
	// Stream directory & lifecycle
	// ------------------------------
	streams := r.Group("/api/streams", authMW, seenMW)
	{
		streams.GET("", streamCtl.ListStreams)
		streams.POST("", streamCtl.CreateStream)
		streams.POST("/:id/activate", streamCtl.Activate)
		streams.PUT("/:id", streamCtl.UpdateStream)
		streams.DELETE("/:id", streamCtl.DeleteStream)
	}

	// ------------------------------
	// Active stream: state, members, invites, audit
	// ------------------------------
	stream := r.Group("/api/stream", authMW, seenMW)
	stream.GET("/watch", streamCtl.Watch)

	scoped := stream.Group("", streamMW)
	{
		scoped.GET("", streamCtl.GetActive)
		scoped.GET("/members", memberCtl.ListMembers)
		scoped.POST("/leave", memberCtl.Leave)
	}
	manage := stream.Group("", streamMW, app.ManagerOnly())
	{
		manage.GET("/activity", streamCtl.ListActivity)
		manage.PUT("/members/:userId", memberCtl.UpdateMember)
		manage.DELETE("/members/:userId", memberCtl.RemoveMember)
		manage.POST("/invites", inviteCtl.CreateInvite)
		manage.GET("/invites", inviteCtl.ListInvites)
		manage.POST("/invites/:inviteId/cancel", inviteCtl.CancelInvite)
	}

	// ------------------------------
	// Stream-scoped CRM boards
	// ------------------------------
	crm := r.Group("/api", authMW, seenMW, streamMW)

	customers := crm.Group("/customers", app.BoardAccess(models.BoardCustomers, models.PermView))
	{
		customers.GET("", customerCtl.List)
		customers.GET("/:id", customerCtl.Get)
	}
	customersEdit := crm.Group("/customers", app.BoardAccess(models.BoardCustomers, models.PermEdit))
	{
		customersEdit.POST("", customerCtl.Create)
		customersEdit.PUT("/:id", customerCtl.Update)
		customersEdit.DELETE("/:id", customerCtl.Delete)
	}

	deals := crm.Group("/deals", app.BoardAccess(models.BoardDeals, models.PermView))
	{
		deals.GET("", dealCtl.List)
		deals.GET("/summary", dealCtl.Summary)
	}
	dealsEdit := crm.Group("/deals", app.BoardAccess(models.BoardDeals, models.PermEdit))
	{
		dealsEdit.POST("", dealCtl.Create)
		dealsEdit.PUT("/:id", dealCtl.Update)
		dealsEdit.DELETE("/:id", dealCtl.Delete)
	}

	prospects := crm.Group("/prospects", app.BoardAccess(models.BoardOutreach, models.PermView))
	{
		prospects.GET("", outreachCtl.List)
	}
	prospectsEdit := crm.Group("/prospects", app.BoardAccess(models.BoardOutreach, models.PermEdit))
	{
		prospectsEdit.POST("", outreachCtl.Create)
		prospectsEdit.PUT("/:id", outreachCtl.Update)
		prospectsEdit.POST("/:id/convert", outreachCtl.Convert)
		prospectsEdit.DELETE("/:id", outreachCtl.Delete)
	}

	tasks := crm.Group("/tasks", app.BoardAccess(models.BoardTasks, models.PermView))
	{
		tasks.GET("", taskCtl.List)
	}
	tasksEdit := crm.Group("/tasks", app.BoardAccess(models.BoardTasks, models.PermEdit))
	{
		tasksEdit.POST("", taskCtl.Create)
		tasksEdit.POST("/:id/complete", taskCtl.Complete)
		tasksEdit.PUT("/:id", taskCtl.Update)
		tasksEdit.DELETE("/:id", taskCtl.Delete)
	}

	events := crm.Group("/events", app.BoardAccess(models.BoardCalendar, models.PermView))
	{
		events.GET("", eventCtl.List)
	}
	eventsEdit := crm.Group("/events", app.BoardAccess(models.BoardCalendar, models.PermEdit))
	{
		eventsEdit.POST("", eventCtl.Create)
		eventsEdit.PUT("/:id", eventCtl.Update)
		eventsEdit.DELETE("/:id", eventCtl.Delete)
	}
}
