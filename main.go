package main

import (
	"log"
	"net/http"
	"os"

	"activityflow/account"
	"activityflow/avatar"
	"activityflow/bizerror"
	"activityflow/client/es"
	"activityflow/client/s3"
	"activityflow/domain"
	"activityflow/domain/activity"
	"activityflow/domain/protocol"
	"activityflow/event"
	"activityflow/indices"
	"activityflow/infra/tracing"
	"activityflow/institute"
	"activityflow/misc"
	"activityflow/notification"
	"activityflow/persistence"
	"activityflow/servehttp"
	"activityflow/session"
	"activityflow/sessions"

	"github.com/gin-gonic/gin"
)

func main() {
	misc.BootstrapLogging()
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	persistence.MigrateObjects = []interface{}{
		&account.User{},
		&institute.Institute{},
		&domain.Form{},
		&domain.FormDraft{},
		&domain.WorkflowDraft{},
		&domain.Activity{},
		&domain.ActivityUser{},
		&domain.ActivityMastermind{},
		&domain.ActivityWorkflow{},
		&domain.ActivityWorkflowStep{},
		&protocol.ProtocolSequence{},
		&event.EventRecord{},
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	tracingCloser, err := tracing.Bootstrap()
	if err != nil {
		log.Fatalf("tracing bootstrap failed %v\n", err)
	}
	defer tracingCloser.Close()

	es.CreateClientFromEnv()
	s3.Bootstrap()

	event.EventHandlers = append(event.EventHandlers, indices.IndexActivityEventHandle)
	activity.StepNotifyFunc = notification.SendStepMail
	indices.StartCron()

	engine := gin.Default()
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, misc.GetServiceName())
	})

	sessions.RegisterSessionsHandler(engine)
	sessions.RegisterSessionHandler(engine, session.SimpleAuthFilter())

	account.RegisterUsersHandler(engine, session.SimpleAuthFilter())
	institute.RegisterInstitutesHandler(engine, session.SimpleAuthFilter())
	avatar.RegisterAvatarAPI(engine, session.SimpleAuthFilter())

	servehttp.RegisterFormsHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterFormSlugHandler(engine)
	servehttp.RegisterFormDraftsHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterWorkflowDraftsHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterActivitiesHandler(engine, session.SimpleAuthFilter())
	servehttp.RegisterSearchHandler(engine, session.SimpleAuthFilter())
	indices.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())

	port := os.Getenv("PORT")
	if port == "" {
		port = "80"
	}
	if err := engine.Run(":" + port); err != nil {
		panic(err)
	}
}
