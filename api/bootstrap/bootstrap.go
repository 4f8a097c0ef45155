package bootstrap

import (
    "context"
    "fmt"
    "sync"

    "github.com/tbeaudouin05/stripe-billing/api/config"
    "github.com/tbeaudouin05/stripe-billing/api/database"
    billingapp "github.com/tbeaudouin05/stripe-billing/api/services/billing/app"
    billingdb "github.com/tbeaudouin05/stripe-billing/api/services/billing/db"
    stripegw "github.com/tbeaudouin05/stripe-billing/api/services/billing/gateway/stripe"
    "github.com/tbeaudouin05/stripe-billing/api/services/billing/timezone"
)

var billingService billingapp.Service
var initOnce sync.Once
var initErr error

// Init initializes config, database, and third-party clients, and wires services.
func Init() error {
    // If a service has already been injected (e.g., tests), do not override or init heavy deps.
    if billingService != nil {
        return nil
    }
    var err error
    if config.AppConfig == nil {
        config.AppConfig, err = config.LoadConfig()
        if err != nil {
            return fmt.Errorf("failed to load config: %w", err)
        }
    }

    // Fail fast on a misconfigured zone rather than on the first billing date read.
    if _, err := timezone.Resolve(config.AppConfig.MerchantTimeZone); err != nil {
        return fmt.Errorf("invalid merchant time zone: %w", err)
    }

    if err := database.Initialize(); err != nil {
        return fmt.Errorf("failed to initialize database: %w", err)
    }
    store := billingdb.NewStore(database.GetDB())
    if err := store.EnsureSchema(context.Background()); err != nil {
        return fmt.Errorf("failed to prepare schema: %w", err)
    }

    stripegw.SetKey(config.AppConfig.StripeSecretKey)

    billingService = billingapp.NewService(stripegw.New(), store, Settings(config.AppConfig))
    return nil
}

// Settings derives the merchant settings shared by every subscription.
func Settings(cfg *config.Config) billingapp.Settings {
    return billingapp.Settings{
        MerchantAccountID: cfg.MerchantAccountID,
        TimeZone:          cfg.MerchantTimeZone,
    }
}

func GetBillingService() billingapp.Service { return billingService }

// SetBillingService allows tests to inject a stub implementation.
func SetBillingService(s billingapp.Service) { billingService = s }

// Ensure runs Init() once per process and returns any initialization error.
func Ensure() error {
    initOnce.Do(func() {
        initErr = Init()
    })
    return initErr
}
