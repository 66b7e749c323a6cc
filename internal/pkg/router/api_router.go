package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/wishclip/wishclip/app/controllers"
	"github.com/wishclip/wishclip/app/repository"
	"github.com/wishclip/wishclip/internal/pkg/checkout"
	"github.com/wishclip/wishclip/internal/pkg/constants"
	"github.com/wishclip/wishclip/internal/pkg/database"
	"github.com/wishclip/wishclip/internal/pkg/jobqueue"
	"github.com/wishclip/wishclip/internal/pkg/notify"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// Wire the pipeline once: repositories -> secret resolver ->
	// orchestrator + fulfillment engine -> controllers.
	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	secrets := checkout.NewSecretResolver(
		repos.PaymentGateway,
		repos.Setting,
		checkout.NewTTLSecretCache(5*time.Minute),
	)

	jobqueue.Configure(jobqueue.Deps{
		Secrets:   secrets,
		NewClient: checkout.DefaultClientFactory,
		Notifier:  notify.NewWebhookNotifierFromEnv(),
	})
	jobs := jobqueue.GetManager()

	controllers.InitializeCheckoutController(
		checkout.NewService(repos.Product, repos.CheckoutSession, secrets, nil),
	)
	controllers.InitializeWebhookController(
		checkout.NewFulfillmentEngine(repos.CheckoutSession, repos.Order, jobs),
		secrets,
	)
	controllers.InitializeOrderController(repos.Order)

	api := app.Group(constants.APIPrefix)
	api.Get(constants.HealthRoute, func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// Checkout creation is rate limited; the payment webhook is not, the
	// provider controls its own delivery rate and throttling it would only
	// delay fulfillment.
	api.Post(constants.CheckoutCreateRoute, limiter.New(limiter.Config{
		Max:        30,
		Expiration: time.Minute,
	}), controllers.HandleCheckoutCreate)
	api.Post(constants.PaymentWebhookRoute, controllers.HandlePaymentWebhook)
	api.Get(constants.OrderStatusRoute, controllers.HandleOrderStatus)
}
