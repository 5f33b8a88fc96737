// internal/app/app.go
package app

import (
	"context"
	"database/sql"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"

	appaws "github.com/unclebandit/togetherunite-backend/internal/aws"
	"github.com/unclebandit/togetherunite-backend/internal/config"
	"github.com/unclebandit/togetherunite-backend/internal/controller"
	"github.com/unclebandit/togetherunite-backend/internal/db"
	"github.com/unclebandit/togetherunite-backend/internal/handler"
	"github.com/unclebandit/togetherunite-backend/internal/payments"
	"github.com/unclebandit/togetherunite-backend/internal/repository"
	"github.com/unclebandit/togetherunite-backend/internal/service"
)

// App holds the shared clients and services every command is built from.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *sql.DB
	AWS    awssdk.Config
	SNS    *appaws.SNSClient

	Advocates *service.AdvocateService
	Campaigns *service.CampaignService
	Outreach  *service.OutreachService
	Billing   *service.BillingService
	Feedback  *service.FeedbackService
}

// New connects to AWS and the database and wires the services. The schema
// is applied first when auto-migrate is enabled.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	awsCfg, err := appaws.LoadConfig(ctx, cfg.AWS.Region, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey)
	if err != nil {
		return nil, err
	}

	dbCfg, err := appaws.ResolveDatabaseCredentials(ctx, awsCfg, cfg.Database)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(ctx, dbCfg, log)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("schema migrated")
	}

	return Wire(cfg, log, conn, awsCfg), nil
}

// Wire builds the services on top of an open connection.
func Wire(cfg *config.Config, log *zap.Logger, conn *sql.DB, awsCfg awssdk.Config) *App {
	advocateRepo := &repository.AdvocateRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	actionRepo := &repository.CampaignActionRepository{DB: conn}

	mailCfg := awsCfg.Copy()
	mailCfg.Region = cfg.AWS.MailRegion()
	snsClient := appaws.NewSNSClient(awsCfg, cfg.AWS.OrganizerTopicARN)

	feedback := &service.FeedbackService{
		CampaignRepo: campaignRepo,
		ActionRepo:   actionRepo,
		Logger:       log.Named("feedback"),
	}
	// Without an organizer topic the feedback service logs alerts instead.
	if cfg.AWS.OrganizerTopicARN != "" {
		feedback.Notifier = snsClient
	}

	return &App{
		Config: cfg,
		Logger: log,
		DB:     conn,
		AWS:    awsCfg,
		SNS:    snsClient,
		Advocates: &service.AdvocateService{
			Directory:    appaws.NewCognitoDirectory(awsCfg, cfg.AWS.UserPoolID),
			AdvocateRepo: advocateRepo,
			Logger:       log.Named("identity"),
		},
		Campaigns: &service.CampaignService{
			CampaignRepo: campaignRepo,
			FrontendURL:  cfg.FrontendURL,
			Logger:       log.Named("campaigns"),
		},
		Outreach: &service.OutreachService{
			CampaignRepo: campaignRepo,
			ActionRepo:   actionRepo,
			Mailer:       appaws.NewSESMailer(mailCfg, cfg.AWS.SESConfigurationSet, cfg.AWS.DefaultSender, log.Named("ses")),
			Logger:       log.Named("outreach"),
		},
		Billing: &service.BillingService{
			Sessions:      payments.NewCheckoutSessions(cfg.Stripe.SecretKey),
			WebhookSecret: cfg.Stripe.WebhookSecret,
			FrontendURL:   cfg.FrontendURL,
			AdvocateRepo:  advocateRepo,
			CampaignRepo:  campaignRepo,
			ActionRepo:    actionRepo,
			Logger:        log.Named("billing"),
		},
		Feedback: feedback,
	}
}

// Controllers exposes the services over HTTP.
func (a *App) Controllers() handler.Controllers {
	return handler.Controllers{
		Advocates: &controller.AdvocateController{AdvocateService: a.Advocates, Logger: a.Logger},
		Campaigns: &controller.CampaignController{CampaignService: a.Campaigns, Logger: a.Logger},
		Outreach:  &controller.OutreachController{OutreachService: a.Outreach, Logger: a.Logger},
		Payments:  &controller.PaymentController{BillingService: a.Billing, Logger: a.Logger},
		Notifications: &controller.NotificationController{
			FeedbackService: a.Feedback,
			Confirmer:       a.SNS,
			TopicARN:        a.Config.AWS.FeedbackTopicARN,
			Logger:          a.Logger,
		},
	}
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
