package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/analytics"
	"github.com/serroba/shortlink/internal/auth"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/ratelimit"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

// LoggerPackage provides *zap.Logger, JSON in production or console when LogFormat is "console".
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "console" {
			return zap.NewDevelopment()
		}

		return zap.NewProduction()
	})
}

// RedisPackage provides the shared Redis connection. It is only dialed when a Redis backend is invoked.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisConn, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisConn{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides the PostgreSQL pool, applying migrations first when Options.Migrate is set.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*PostgresConn, error) {
		return connectPostgres(do.MustInvoke[*Options](i), do.MustInvoke[*zap.Logger](i))
	})
}

// RepositoryPackage provides the entry and click stores for Options.Storage.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		if do.MustInvoke[*Options](i).Storage == BackendPostgres {
			return store.NewPostgresStore(do.MustInvoke[*PostgresConn](i).Pool), nil
		}

		return store.NewMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (analytics.Store, error) {
		if do.MustInvoke[*Options](i).Storage == BackendPostgres {
			return store.NewPostgresClickStore(do.MustInvoke[*PostgresConn](i).Pool), nil
		}

		// In memory, clicks resolve their entries through the same store the resolver writes to.
		return store.NewMemoryClickStore(do.MustInvoke[shortener.Repository](i)), nil
	})
}

// CachePackage provides the resolution cache for Options.Cache.
func CachePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Cache, error) {
		if do.MustInvoke[*Options](i).Cache == BackendRedis {
			return store.NewRedisCache(do.MustInvoke[*RedisConn](i).Client), nil
		}

		return store.NewMemoryCache(store.DefaultCleanupInterval), nil
	})
}

// ServicePackage provides the resolver, click recorder, aggregator and audit log.
func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Resolver, error) {
		opts := do.MustInvoke[*Options](i)

		generator, err := shortener.NewCodeGenerator(opts.CodeLength)
		if err != nil {
			return nil, fmt.Errorf("create code generator: %w", err)
		}

		return shortener.NewResolver(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[shortener.Cache](i),
			generator,
			do.MustInvoke[*zap.Logger](i),
			shortener.WithDefaultExpiration(opts.expiration()),
			shortener.WithLookupTimeout(opts.lookupTimeout()),
			shortener.WithLocation(opts.location()),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*analytics.Recorder, error) {
		return analytics.NewRecorder(
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[analytics.Store](i),
			analytics.NewUserAgentClassifier(),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*analytics.Aggregator, error) {
		opts := do.MustInvoke[*Options](i)

		return analytics.NewAggregator(
			do.MustInvoke[*shortener.Resolver](i),
			do.MustInvoke[analytics.Store](i),
			analytics.WithAggregatorLocation(opts.location()),
			analytics.WithTopScope(analytics.ParseTopScope(opts.TopScope)),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*analytics.AuditLog, error) {
		return analytics.NewAuditLog(do.MustInvoke[*zap.Logger](i)), nil
	})
}

// RateLimitPackage provides the policy limiter with counters in Options.RateLimitStore.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		if do.MustInvoke[*Options](i).RateLimitStore == BackendRedis {
			return store.NewRateLimitRedisStore(do.MustInvoke[*RedisConn](i).Client), nil
		}

		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		return ratelimit.NewPolicyLimiter(do.MustInvoke[ratelimit.Store](i), ratelimit.DefaultPolicy()), nil
	})
}

// PublisherGroupPackage provides the event publisher and the typed publish functions of the handlers.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (messaging.PubSub, error) {
		return messaging.NewGoChannelPubSub(do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var (
			publisher message.Publisher
			err       error
		)

		if opts.Broker == string(messaging.BrokerRedis) {
			publisher, err = messaging.NewRedisPublisher(do.MustInvoke[*RedisConn](i).Client, logger)
			if err != nil {
				return nil, err
			}
		} else {
			publisher = do.MustInvoke[messaging.PubSub](i).Publisher
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (handlers.Publishers, error) {
		publisher := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()

		return handlers.Publishers{
			URLCreated:  messaging.NewPublishFunc[analytics.URLCreatedEvent](publisher, analytics.TopicURLCreated),
			URLAccessed: messaging.NewPublishFunc[analytics.URLAccessedEvent](publisher, analytics.TopicURLAccessed),
			URLDeleted:  messaging.NewPublishFunc[analytics.URLDeletedEvent](publisher, analytics.TopicURLDeleted),
		}, nil
	})
}

// ConsumerGroupPackage provides the analytics consumers: click recording and the audit trail.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var (
			subscriber message.Subscriber
			err        error
		)

		if opts.Broker == string(messaging.BrokerRedis) {
			subscriber, err = messaging.NewRedisSubscriber(
				do.MustInvoke[*RedisConn](i).Client, messaging.DefaultConsumerGroup, logger)
			if err != nil {
				return nil, err
			}
		} else {
			subscriber = do.MustInvoke[messaging.PubSub](i).Subscriber
		}

		recorder := do.MustInvoke[*analytics.Recorder](i)
		audit := do.MustInvoke[*analytics.AuditLog](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		messaging.Subscribe(group, analytics.TopicURLAccessed, recorder.HandleURLAccessed)
		messaging.Subscribe(group, analytics.TopicURLCreated, audit.HandleURLCreated)
		messaging.Subscribe(group, analytics.TopicURLDeleted, audit.HandleURLDeleted)

		return group, nil
	})
}

// HTTPPackage provides the router and the huma API with every route and middleware registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		api := humachi.New(router, huma.DefaultConfig("Short Links", "1.0.0"))
		api.UseMiddleware(
			auth.Middleware(api),
			middleware.RequestMetaMiddleware(api),
			middleware.PolicyRateLimiter(
				api,
				do.MustInvoke[*ratelimit.PolicyLimiter](i),
				ratelimit.NewOperationScopeResolver(),
				logger,
			),
		)

		urls := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Resolver](i),
			opts.PublicBaseURL(),
			do.MustInvoke[handlers.Publishers](i),
			logger,
		)
		stats := handlers.NewAnalyticsHandler(do.MustInvoke[*analytics.Aggregator](i), opts.location(), logger)

		handlers.RegisterRoutes(api, urls, stats)
		health.RegisterRoutes(api, health.NewHandler(healthComponents(i, opts)...))

		return api, nil
	})
}

func healthComponents(i *do.Injector, opts *Options) []health.Component {
	var components []health.Component

	if opts.Storage == BackendPostgres {
		components = append(components, health.Component{
			Name:    "postgres",
			Checker: health.NewPostgresChecker(do.MustInvoke[*PostgresConn](i).Pool),
		})
	}

	if opts.UsesRedis() {
		components = append(components, health.Component{
			Name:    "redis",
			Checker: health.NewRedisChecker(do.MustInvoke[*RedisConn](i).Client),
		})
	}

	return components
}

// Register adds every package to the injector.
func Register(i *do.Injector, opts *Options) {
	do.ProvideValue(i, opts)
	LoggerPackage(i)
	RedisPackage(i)
	PostgresPackage(i)
	RepositoryPackage(i)
	CachePackage(i)
	ServicePackage(i)
	RateLimitPackage(i)
	PublisherGroupPackage(i)
	ConsumerGroupPackage(i)
	HTTPPackage(i)
}
