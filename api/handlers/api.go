package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/alisto-app/alisto-api/api"
	"github.com/alisto-app/alisto-api/api/scheduler"
	"github.com/alisto-app/alisto-api/config"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	DB       databases.CollectionHelper
	Config   config.Config
	dbHelper databases.DatabaseHelper
	cld      *cloudinary.Cloudinary
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	locator := Locator{
		UDB:  databases.NewUserDatabase(a.dbHelper),
		ADB:  databases.NewAgencyDatabase(a.dbHelper),
		ATDB: databases.NewAgencyEmergencyTypeDatabase(a.dbHelper),
	}
	report := Report{
		RDB:  databases.NewReportDatabase(a.dbHelper),
		VDB:  databases.NewVerificationDatabase(a.dbHelper),
		TDB:  databases.NewEmergencyTypeDatabase(a.dbHelper),
		UDB:  databases.NewUserDatabase(a.dbHelper),
		PTDB: databases.NewPushTokenDatabase(a.dbHelper),
	}
	crowdsource := Crowdsource{
		RDB:     databases.NewReportDatabase(a.dbHelper),
		BDB:     databases.NewBroadcastDatabase(a.dbHelper),
		TDB:     databases.NewEmergencyTypeDatabase(a.dbHelper),
		PTDB:    databases.NewPushTokenDatabase(a.dbHelper),
		Locator: locator,
	}
	verification := Verification{
		VDB: databases.NewVerificationDatabase(a.dbHelper),
		RDB: databases.NewReportDatabase(a.dbHelper),
	}
	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	agency := Agency{
		ADB:  databases.NewAgencyDatabase(a.dbHelper),
		ATDB: databases.NewAgencyEmergencyTypeDatabase(a.dbHelper),
	}
	emergencyType := EmergencyType{DB: databases.NewEmergencyTypeDatabase(a.dbHelper)}
	evaluation := Evaluation{
		EDB: databases.NewEvaluationDatabase(a.dbHelper),
		RDB: databases.NewReportDatabase(a.dbHelper),
	}
	pushToken := PushToken{DB: databases.NewPushTokenDatabase(a.dbHelper)}
	admin := Admin{
		UDB: databases.NewUserDatabase(a.dbHelper),
		RDB: databases.NewPasswordResetDatabase(a.dbHelper),
	}
	cloudinaryHandler := CloudinaryHandler{Cloudinary: a.cld}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// websocket alerts sit outside the versioned API
	r.HandleFunc("/ws/notifications", HandleNotificationsWebSocket)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/report", api.Middleware(http.HandlerFunc(report.CreateReportHandler))).Methods("POST")
	apiCreate.Handle("/report/{report_id}", api.Middleware(http.HandlerFunc(report.ReportByIDHandler))).Methods("GET")
	apiCreate.Handle("/report/{report_id}", api.Middleware(http.HandlerFunc(report.DeleteReportHandler))).Methods("DELETE")
	apiCreate.Handle("/report/{report_id}/responder-actions", api.Middleware(http.HandlerFunc(report.ResponderActionsHandler))).Methods("POST")
	apiCreate.Handle("/report/{report_id}/status-update", api.Middleware(http.HandlerFunc(report.StatusUpdateHandler))).Methods("POST")
	apiCreate.Handle("/report/{report_id}/respond", api.Middleware(http.HandlerFunc(report.RespondHandler))).Methods("POST")
	apiCreate.Handle("/report/{report_id}/trigger-crowdsourcing", api.Middleware(http.HandlerFunc(crowdsource.TriggerCrowdsourcingHandler))).Methods("POST")
	apiCreate.Handle("/report/{report_id}/mark-verified", api.Middleware(http.HandlerFunc(verification.MarkVerifiedHandler))).Methods("POST")
	apiCreate.Handle("/report/{report_id}/verifications", api.Middleware(http.HandlerFunc(verification.VerificationsByReportIDHandler))).Methods("GET")
	apiCreate.Handle("/report/{report_id}/evaluations", api.Middleware(http.HandlerFunc(evaluation.EvaluationsByReportIDHandler))).Methods("GET")
	apiCreate.Handle("/reports", api.Middleware(http.HandlerFunc(report.ReportsHandler))).Methods("GET")
	apiCreate.Handle("/reports/user/{user_id}", api.Middleware(http.HandlerFunc(report.ReportsByUserIDHandler))).Methods("GET")

	apiCreate.Handle("/verifications", api.Middleware(http.HandlerFunc(verification.SubmitVerificationHandler))).Methods("POST")
	apiCreate.Handle("/verification/{verification_id}", api.Middleware(http.HandlerFunc(verification.AmendVerificationHandler))).Methods("PATCH")

	apiCreate.Handle("/evaluations", api.Middleware(http.HandlerFunc(evaluation.CreateEvaluationHandler))).Methods("POST")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}/location", api.Middleware(http.HandlerFunc(u.UpdateLocationHandler))).Methods("PUT")
	apiCreate.Handle("/user/{user_id}/verify-email", http.HandlerFunc(u.VerifyEmailHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}/crowdsource/poll", api.Middleware(http.HandlerFunc(crowdsource.PollHandler))).Methods("GET")
	apiCreate.Handle("/users", api.Middleware(http.HandlerFunc(u.UsersHandler))).Methods("GET")

	apiCreate.Handle("/agency", api.Middleware(http.HandlerFunc(agency.CreateAgencyHandler))).Methods("POST")
	apiCreate.Handle("/agency/{agency_id}", api.Middleware(http.HandlerFunc(agency.AgencyByIDHandler))).Methods("GET")
	apiCreate.Handle("/agency/{agency_id}/emergency-types", api.Middleware(http.HandlerFunc(agency.LinkEmergencyTypeHandler))).Methods("POST")
	apiCreate.Handle("/agencies", api.Middleware(http.HandlerFunc(agency.AgenciesHandler))).Methods("GET")

	apiCreate.Handle("/emergency-type", api.Middleware(http.HandlerFunc(emergencyType.CreateEmergencyTypeHandler))).Methods("POST")
	apiCreate.Handle("/emergency-type/{emergency_type_id}", api.Middleware(http.HandlerFunc(emergencyType.EmergencyTypeByIDHandler))).Methods("GET")
	apiCreate.Handle("/emergency-types", api.Middleware(http.HandlerFunc(emergencyType.EmergencyTypesHandler))).Methods("GET")

	apiCreate.Handle("/push-tokens", api.Middleware(http.HandlerFunc(pushToken.RegisterPushTokenHandler))).Methods("POST")
	apiCreate.Handle("/push-tokens", api.Middleware(http.HandlerFunc(pushToken.UnregisterPushTokensHandler))).Methods("DELETE")

	apiCreate.Handle("/admin/login", http.HandlerFunc(admin.AdminLoginHandler)).Methods("POST")
	apiCreate.Handle("/admin/forgot-password", http.HandlerFunc(admin.AdminForgotPasswordHandler)).Methods("POST")
	apiCreate.Handle("/admin/reset-password", http.HandlerFunc(admin.AdminResetPasswordHandler)).Methods("POST")
	apiCreate.Handle("/admin/users/pending", api.Middleware(http.HandlerFunc(admin.PendingProfilesHandler))).Methods("GET")
	apiCreate.Handle("/admin/users/{user_id}/approve", api.Middleware(http.HandlerFunc(admin.ApproveProfileHandler))).Methods("POST")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")
	apiCreate.Handle("/upload-image", api.Middleware(http.HandlerFunc(cloudinaryHandler.UploadImage))).Methods("POST")

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("alisto-api has connected to the database")

	// cloudinary is optional, uploads are disabled without it
	cld, err := cloudinary.New()
	if err != nil {
		zap.S().Warnw("cloudinary not configured, server-side uploads disabled", "error", err)
	} else {
		a.cld = cld
	}

	// initialize api router
	a.initializeRoutes()

	// background jobs: broadcast reaper + pending profile reminders
	s := scheduler.NewScheduler(
		databases.NewBroadcastDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
		databases.NewSchedulerLockDatabase(a.dbHelper),
	)
	s.Start()

	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
