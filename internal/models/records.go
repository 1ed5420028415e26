package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attendance 考勤记录模型
type Attendance struct {
	BaseModel
	TenantID   uint      `json:"tenant_id" gorm:"not null;index"`
	StudentID  uint      `json:"student_id" gorm:"not null;index"`
	ClassID    uint      `json:"class_id" gorm:"not null;index"`
	Date       time.Time `json:"date" gorm:"not null;index"`
	Status     string    `json:"status" gorm:"not null;size:20"` // present, absent, late, excused
	Remark     string    `json:"remark" gorm:"size:255"`
	RecordedBy uint      `json:"recorded_by"`
}

// TableName 表名
func (a *Attendance) TableName() string {
	return "attendances"
}

// 考勤状态常量
const (
	AttendanceStatusPresent = "present"
	AttendanceStatusAbsent  = "absent"
	AttendanceStatusLate    = "late"
	AttendanceStatusExcused = "excused"
)

// Fee 费用模型
type Fee struct {
	BaseModel
	TenantID    uint       `json:"tenant_id" gorm:"not null;index"`
	StudentID   uint       `json:"student_id" gorm:"not null;index"`
	TermID      *uint      `json:"term_id"`
	Category    string     `json:"category" gorm:"size:50"` // tuition, transport, boarding...
	Description string     `json:"description" gorm:"size:255"`
	Amount      float64    `json:"amount" gorm:"not null"`
	PaidAmount  float64    `json:"paid_amount" gorm:"default:0"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status" gorm:"default:'unpaid';size:20"`
}

// TableName 表名
func (f *Fee) TableName() string {
	return "fees"
}

// 费用状态常量
const (
	FeeStatusUnpaid  = "unpaid"
	FeeStatusPartial = "partial"
	FeeStatusPaid    = "paid"
	FeeStatusOverdue = "overdue"
)

// Outstanding 未缴余额
func (f *Fee) Outstanding() float64 {
	return f.Amount - f.PaidAmount
}

// Payment 缴费流水模型 - 仅作台账行，不对接支付网关
type Payment struct {
	BaseModel
	TenantID   uint      `json:"tenant_id" gorm:"not null;index"`
	FeeID      uint      `json:"fee_id" gorm:"not null;index"`
	StudentID  uint      `json:"student_id" gorm:"not null;index"`
	Amount     float64   `json:"amount" gorm:"not null"`
	Method     string    `json:"method" gorm:"size:30"` // cash, bank, mobile_money...
	Reference  string    `json:"reference" gorm:"size:64;index"`
	PaidAt     time.Time `json:"paid_at"`
	RecordedBy uint      `json:"recorded_by"`
}

// TableName 表名
func (p *Payment) TableName() string {
	return "payments"
}

// BehaviorRecord 行为记录模型
type BehaviorRecord struct {
	BaseModel
	TenantID    uint   `json:"tenant_id" gorm:"not null;index"`
	StudentID   uint   `json:"student_id" gorm:"not null;index"`
	ClassID     *uint  `json:"class_id"`
	Type        string `json:"type" gorm:"size:20"` // merit, demerit, incident
	Points      int    `json:"points"`
	Description string `json:"description" gorm:"size:500"`
	RecordedBy  uint   `json:"recorded_by"`
}

// TableName 表名
func (b *BehaviorRecord) TableName() string {
	return "behavior_records"
}

// Notification 通知模型
// user_id为空表示租户广播
type Notification struct {
	BaseModel
	TenantID uint   `json:"tenant_id" gorm:"not null;index"`
	UserID   *uint  `json:"user_id" gorm:"index"`
	Title    string `json:"title" gorm:"not null;size:200"`
	Body     string `json:"body" gorm:"size:2000"`
	Category string `json:"category" gorm:"size:50"`
	IsRead   bool   `json:"is_read" gorm:"default:false"`
}

// TableName 表名
func (n *Notification) TableName() string {
	return "notifications"
}

// TermReport 学期报告模型
type TermReport struct {
	BaseModel
	TenantID       uint    `json:"tenant_id" gorm:"not null;index"`
	StudentID      uint    `json:"student_id" gorm:"not null;index"`
	TermID         uint    `json:"term_id" gorm:"not null;index"`
	ClassID        uint    `json:"class_id"`
	OverallAverage float64 `json:"overall_average"`
	OverallGPA     float64 `json:"overall_gpa"`
	LetterGrade    string  `json:"letter_grade" gorm:"size:5"`
	Position       *int    `json:"position"`
	Remarks        string  `json:"remarks" gorm:"size:1000"`
	GeneratedBy    uint    `json:"generated_by"`
}

// TableName 表名
func (r *TermReport) TableName() string {
	return "term_reports"
}

// Asset 资产（文件）元数据模型，文件存储本体不在本服务范围内
type Asset struct {
	BaseModel
	TenantID   uint   `json:"tenant_id" gorm:"not null;index"`
	Name       string `json:"name" gorm:"not null;size:200"`
	Category   string `json:"category" gorm:"size:50"`
	FileKey    string `json:"file_key" gorm:"size:255"`
	UploadedBy uint   `json:"uploaded_by"`
}

// TableName 表名
func (a *Asset) TableName() string {
	return "assets"
}

// AIReportRequest AI报告生成请求模型
type AIReportRequest struct {
	BaseModel
	TenantID  uint   `json:"tenant_id" gorm:"not null;index"`
	StudentID uint   `json:"student_id" gorm:"not null"`
	TermID    *uint  `json:"term_id"`
	RequestID string `json:"request_id" gorm:"size:64;index"`
	Status    string `json:"status" gorm:"default:'pending';size:20"`
	Result    string `json:"result" gorm:"type:text"`
}

// TableName 表名
func (r *AIReportRequest) TableName() string {
	return "ai_report_requests"
}

// AuditLog 审计日志模型
type AuditLog struct {
	BaseModel
	TenantID   uint           `json:"tenant_id" gorm:"not null;index"`
	UserID     uint           `json:"user_id"`
	Action     string         `json:"action" gorm:"size:50"`
	Resource   string         `json:"resource" gorm:"size:50"`
	ResourceID uint           `json:"resource_id"`
	Detail     datatypes.JSON `json:"detail" gorm:"type:jsonb"`
	IP         string         `json:"ip" gorm:"size:45"`
}

// TableName 表名
func (l *AuditLog) TableName() string {
	return "audit_logs"
}
