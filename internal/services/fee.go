package services

import (
	"time"

	"smp/internal/models"
	"smp/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeeService struct {
	db *gorm.DB
}

func NewFeeService(db *gorm.DB) *FeeService {
	return &FeeService{db: db}
}

// Create 创建费用账单
func (s *FeeService) Create(tenantID, studentID uint, termID *uint, category, description string, amount float64, dueDate *time.Time) (*models.Fee, error) {
	if amount <= 0 {
		return nil, errors.NewValidation("费用金额必须大于0")
	}
	var student models.Student
	if err := s.db.Where("tenant_id = ?", tenantID).First(&student, studentID).Error; err != nil {
		return nil, err
	}
	if termID != nil {
		var term models.Term
		if err := s.db.Where("tenant_id = ?", tenantID).First(&term, *termID).Error; err != nil {
			return nil, err
		}
	}

	fee := &models.Fee{
		TenantID:    tenantID,
		StudentID:   studentID,
		TermID:      termID,
		Category:    category,
		Description: description,
		Amount:      amount,
		DueDate:     dueDate,
		Status:      models.FeeStatusUnpaid,
	}
	if err := s.db.Create(fee).Error; err != nil {
		return nil, err
	}
	return fee, nil
}

// GetByID 根据ID获取费用
func (s *FeeService) GetByID(tenantID, id uint) (*models.Fee, error) {
	var fee models.Fee
	err := s.db.Where("tenant_id = ?", tenantID).First(&fee, id).Error
	return &fee, err
}

// List 费用列表（分页）
func (s *FeeService) List(tenantID uint, studentID *uint, status string, page, pageSize int) ([]*models.Fee, int64, error) {
	var fees []*models.Fee
	var total int64

	query := s.db.Model(&models.Fee{}).Where("tenant_id = ?", tenantID)
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("due_date ASC NULLS LAST, created_at DESC").
		Offset(offset).Limit(pageSize).Find(&fees).Error
	if err != nil {
		return nil, 0, err
	}
	return fees, total, nil
}

// RecordPayment 记录缴费：金额不得超过未缴余额，状态随累计缴费推进
// 流水号未提供时生成uuid，作为对账唯一凭据
func (s *FeeService) RecordPayment(tenantID, feeID uint, amount float64, method, reference string, recordedBy uint) (*models.Payment, error) {
	if amount <= 0 {
		return nil, errors.NewValidation("缴费金额必须大于0")
	}

	var payment *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var fee models.Fee
		if err := tx.Where("tenant_id = ?", tenantID).First(&fee, feeID).Error; err != nil {
			return err
		}
		if amount > fee.Outstanding() {
			return errors.NewValidation("缴费金额超过未缴余额")
		}

		if reference == "" {
			reference = uuid.New().String()
		}

		payment = &models.Payment{
			TenantID:   tenantID,
			FeeID:      fee.ID,
			StudentID:  fee.StudentID,
			Amount:     amount,
			Method:     method,
			Reference:  reference,
			PaidAt:     time.Now(),
			RecordedBy: recordedBy,
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		fee.PaidAmount += amount
		if fee.Outstanding() <= 0 {
			fee.Status = models.FeeStatusPaid
		} else {
			fee.Status = models.FeeStatusPartial
		}
		return tx.Save(&fee).Error
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments 费用的缴费流水
func (s *FeeService) ListPayments(tenantID, feeID uint) ([]*models.Payment, error) {
	if _, err := s.GetByID(tenantID, feeID); err != nil {
		return nil, err
	}
	var payments []*models.Payment
	err := s.db.Where("tenant_id = ? AND fee_id = ?", tenantID, feeID).
		Order("paid_at DESC").Find(&payments).Error
	return payments, err
}

// MarkOverdue 将到期未缴清的账单标记为overdue，返回受影响行数
func (s *FeeService) MarkOverdue(now time.Time) (int64, error) {
	result := s.db.Model(&models.Fee{}).
		Where("due_date IS NOT NULL AND due_date < ? AND status IN ?",
			now, []string{models.FeeStatusUnpaid, models.FeeStatusPartial}).
		Update("status", models.FeeStatusOverdue)
	return result.RowsAffected, result.Error
}

// ListOverdue 全部租户的逾期账单（提醒调度用）
func (s *FeeService) ListOverdue() ([]*models.Fee, error) {
	var fees []*models.Fee
	err := s.db.Where("status = ?", models.FeeStatusOverdue).Find(&fees).Error
	return fees, err
}

// Delete 删除费用（软删除），已有缴费流水时拒绝
func (s *FeeService) Delete(tenantID, id uint) error {
	fee, err := s.GetByID(tenantID, id)
	if err != nil {
		return err
	}

	var paymentCount int64
	s.db.Model(&models.Payment{}).Where("tenant_id = ? AND fee_id = ?", tenantID, id).Count(&paymentCount)
	if paymentCount > 0 {
		return errors.NewValidation("费用已有缴费流水，无法删除")
	}

	return s.db.Delete(fee).Error
}
