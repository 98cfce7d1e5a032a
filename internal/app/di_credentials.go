package app

import (
	"encoding/base64"
	"fmt"
	"sync"

	auditRepository "github.com/allisson/credstore/internal/audit/repository"
	auditService "github.com/allisson/credstore/internal/audit/service"
	auditUseCase "github.com/allisson/credstore/internal/audit/usecase"
	authRepository "github.com/allisson/credstore/internal/auth/repository"
	authUseCase "github.com/allisson/credstore/internal/auth/usecase"
	credentialRepository "github.com/allisson/credstore/internal/credential/repository"
	credentialUseCase "github.com/allisson/credstore/internal/credential/usecase"
	"github.com/allisson/credstore/internal/database"
	"github.com/allisson/credstore/internal/generator"
	"github.com/allisson/credstore/internal/http"
)

type credentialComponents struct {
	auditRepo           auditUseCase.AuditRecordRepository
	auditLogUseCase     auditUseCase.AuditLogUseCase
	permissionRepo      authUseCase.PermissionRepository
	permissionUseCase   authUseCase.PermissionUseCase
	credentialRepo      credentialUseCase.CredentialDataService
	credentialHandler   credentialUseCase.CredentialHandler
	credentialService   credentialUseCase.AuditingCredentialService
	rotationUseCase     credentialUseCase.RotationUseCase
	credentialGenerator *generator.CredentialGenerator
	opsServer           *http.Server

	auditRepoInit           sync.Once
	auditLogUseCaseInit     sync.Once
	permissionRepoInit      sync.Once
	permissionUseCaseInit   sync.Once
	credentialRepoInit      sync.Once
	credentialHandlerInit   sync.Once
	credentialServiceInit   sync.Once
	rotationUseCaseInit     sync.Once
	credentialGeneratorInit sync.Once
	opsServerInit           sync.Once
}

// AuditRecordRepository returns the audit record repository for the configured driver.
func (c *Container) AuditRecordRepository() (auditUseCase.AuditRecordRepository, error) {
	return resolve(c, &c.credentials.auditRepoInit, "auditRepository",
		&c.credentials.auditRepo, c.initAuditRecordRepository)
}

// AuditLogUseCase returns the signing audit log.
func (c *Container) AuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	return resolve(c, &c.credentials.auditLogUseCaseInit, "auditLogUseCase",
		&c.credentials.auditLogUseCase, c.initAuditLogUseCase)
}

// PermissionRepository returns the permission repository for the configured driver.
func (c *Container) PermissionRepository() (authUseCase.PermissionRepository, error) {
	return resolve(c, &c.credentials.permissionRepoInit, "permissionRepository",
		&c.credentials.permissionRepo, c.initPermissionRepository)
}

// PermissionUseCase returns the instrumented permission use case.
func (c *Container) PermissionUseCase() (authUseCase.PermissionUseCase, error) {
	return resolve(c, &c.credentials.permissionUseCaseInit, "permissionUseCase",
		&c.credentials.permissionUseCase, c.initPermissionUseCase)
}

// CredentialRepository returns the credential data service for the configured driver.
func (c *Container) CredentialRepository() (credentialUseCase.CredentialDataService, error) {
	return resolve(c, &c.credentials.credentialRepoInit, "credentialRepository",
		&c.credentials.credentialRepo, c.initCredentialRepository)
}

// CredentialHandler returns the permission-checking credential handler.
func (c *Container) CredentialHandler() (credentialUseCase.CredentialHandler, error) {
	return resolve(c, &c.credentials.credentialHandlerInit, "credentialHandler",
		&c.credentials.credentialHandler, c.initCredentialHandler)
}

// AuditingCredentialService returns the audited, instrumented credential service.
func (c *Container) AuditingCredentialService() (credentialUseCase.AuditingCredentialService, error) {
	return resolve(c, &c.credentials.credentialServiceInit, "credentialService",
		&c.credentials.credentialService, c.initAuditingCredentialService)
}

// RotationUseCase returns the re-encryption use case.
func (c *Container) RotationUseCase() (credentialUseCase.RotationUseCase, error) {
	return resolve(c, &c.credentials.rotationUseCaseInit, "rotationUseCase",
		&c.credentials.rotationUseCase, c.initRotationUseCase)
}

// CredentialGenerator returns the generator of new credential versions.
func (c *Container) CredentialGenerator() (*generator.CredentialGenerator, error) {
	return resolve(c, &c.credentials.credentialGeneratorInit, "credentialGenerator",
		&c.credentials.credentialGenerator, c.initCredentialGenerator)
}

// OpsServer returns the health and metrics listener.
func (c *Container) OpsServer() (*http.Server, error) {
	return resolve(c, &c.credentials.opsServerInit, "opsServer",
		&c.credentials.opsServer, c.initOpsServer)
}

func (c *Container) initAuditRecordRepository() (auditUseCase.AuditRecordRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit record repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return auditRepository.NewMySQLAuditRecordRepository(db), nil
	case database.DriverPostgres:
		return auditRepository.NewPostgreSQLAuditRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditLogUseCase() (auditUseCase.AuditLogUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for audit log use case: %w", err)
	}
	repo, err := c.AuditRecordRepository()
	if err != nil {
		return nil, err
	}

	secret, err := base64.StdEncoding.DecodeString(c.config.AuditSigningKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode AUDIT_SIGNING_KEY: %w", err)
	}
	signer, err := auditService.NewAuditSigner(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit signer: %w", err)
	}

	return auditUseCase.NewAuditLogUseCase(txManager, repo, signer), nil
}

func (c *Container) initPermissionRepository() (authUseCase.PermissionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for permission repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return authRepository.NewMySQLPermissionRepository(db), nil
	case database.DriverPostgres:
		return authRepository.NewPostgreSQLPermissionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initPermissionUseCase() (authUseCase.PermissionUseCase, error) {
	repo, err := c.PermissionRepository()
	if err != nil {
		return nil, err
	}
	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}
	return authUseCase.NewPermissionUseCaseWithMetrics(authUseCase.NewPermissionUseCase(repo), bm), nil
}

func (c *Container) initCredentialRepository() (credentialUseCase.CredentialDataService, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	switch c.config.DBDriver {
	case database.DriverMySQL:
		return credentialRepository.NewMySQLCredentialRepository(db), nil
	case database.DriverPostgres:
		return credentialRepository.NewPostgreSQLCredentialRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initCredentialHandler() (credentialUseCase.CredentialHandler, error) {
	repo, err := c.CredentialRepository()
	if err != nil {
		return nil, err
	}
	permissions, err := c.PermissionUseCase()
	if err != nil {
		return nil, err
	}
	registry, err := c.KeyRegistry()
	if err != nil {
		return nil, err
	}
	return credentialUseCase.NewCredentialHandler(repo, permissions, registry), nil
}

func (c *Container) initAuditingCredentialService() (credentialUseCase.AuditingCredentialService, error) {
	handler, err := c.CredentialHandler()
	if err != nil {
		return nil, err
	}
	auditLog, err := c.AuditLogUseCase()
	if err != nil {
		return nil, err
	}
	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	service := credentialUseCase.NewAuditingCredentialService(handler, auditLog, c.Logger())
	return credentialUseCase.NewAuditingCredentialServiceWithMetrics(service, bm), nil
}

func (c *Container) initRotationUseCase() (credentialUseCase.RotationUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for rotation use case: %w", err)
	}
	repo, err := c.CredentialRepository()
	if err != nil {
		return nil, err
	}
	registry, err := c.KeyRegistry()
	if err != nil {
		return nil, err
	}
	return credentialUseCase.NewRotationUseCase(
		txManager,
		repo,
		registry,
		c.config.RotationRatePerSec,
		c.Logger(),
	), nil
}

func (c *Container) initCredentialGenerator() (*generator.CredentialGenerator, error) {
	registry, err := c.KeyRegistry()
	if err != nil {
		return nil, err
	}
	return generator.NewCredentialGenerator(
		registry,
		generator.NewCertificateGenerator(
			generator.NewSystemClock(),
			generator.NewRandomSerialNumberGenerator(),
		),
		generator.NewKeyPairGenerator(),
		generator.NewPasswordGenerator(),
	), nil
}

func (c *Container) initOpsServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for ops server: %w", err)
	}
	registry, err := c.KeyRegistry()
	if err != nil {
		return nil, err
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	return http.NewServer(db, registry, provider, http.Options{
		Host:             c.config.OpsHost,
		Port:             c.config.OpsPort,
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
		MetricsNamespace: c.config.MetricsNamespace,
	}, c.Logger()), nil
}
