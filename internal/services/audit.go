package services

import (
	"encoding/json"

	"smp/internal/models"
	"smp/pkg/logger"

	"gorm.io/gorm"
)

// AuditService 审计日志，写失败只记日志不阻断业务
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record 记录审计日志
func (s *AuditService) Record(tenantID, userID uint, action, resource string, resourceID uint, detail map[string]interface{}, ip string) {
	log := &models.AuditLog{
		TenantID:   tenantID,
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         ip,
	}
	if detail != nil {
		if data, err := json.Marshal(detail); err == nil {
			log.Detail = data
		}
	}

	if err := s.db.Create(log).Error; err != nil {
		logger.GetLogger().Warnf("写入审计日志失败: %v", err)
	}
}

// List 审计日志查询（分页）
func (s *AuditService) List(tenantID uint, userID *uint, resource string, page, pageSize int) ([]*models.AuditLog, int64, error) {
	var logs []*models.AuditLog
	var total int64

	query := s.db.Model(&models.AuditLog{}).Where("tenant_id = ?", tenantID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if resource != "" {
		query = query.Where("resource = ?", resource)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
