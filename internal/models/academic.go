package models

import "time"

// Student 学生模型
type Student struct {
	BaseModel
	TenantID        uint       `json:"tenant_id" gorm:"not null;index"`
	FirstName       string     `json:"first_name" gorm:"not null;size:50"`
	LastName        string     `json:"last_name" gorm:"not null;size:50"`
	AdmissionNumber string     `json:"admission_number" gorm:"size:50;index"`
	ClassID         *uint      `json:"class_id" gorm:"index"`
	DateOfBirth     *time.Time `json:"date_of_birth"`
	Gender          string     `json:"gender" gorm:"size:10"`
	GuardianName    string     `json:"guardian_name" gorm:"size:100"`
	GuardianPhone   string     `json:"guardian_phone" gorm:"size:20"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`

	Class *Class `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

// TableName 表名
func (s *Student) TableName() string {
	return "students"
}

// Class 班级模型
type Class struct {
	BaseModel
	TenantID  uint   `json:"tenant_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"not null;size:100"`
	Level     string `json:"level" gorm:"size:50"`   // 年级，如 "Grade 9"
	Section   string `json:"section" gorm:"size:20"` // 班别，如 "A"
	TeacherID *uint  `json:"teacher_id"`             // 班主任
}

// TableName 表名
func (c *Class) TableName() string {
	return "classes"
}

// Subject 科目模型
type Subject struct {
	BaseModel
	TenantID uint   `json:"tenant_id" gorm:"not null;index"`
	Name     string `json:"name" gorm:"not null;size:100"`
	Code     string `json:"code" gorm:"size:20"`
}

// TableName 表名
func (s *Subject) TableName() string {
	return "subjects"
}

// ClassSubject 班级科目任课关联 - 教师可见范围的唯一事实来源
// (tenant_id, class_id, subject_id) 唯一：同一班级科目同一时间只有一位任课教师
type ClassSubject struct {
	BaseModel
	TenantID  uint  `json:"tenant_id" gorm:"not null;index;uniqueIndex:idx_class_subject"`
	ClassID   uint  `json:"class_id" gorm:"not null;uniqueIndex:idx_class_subject"`
	SubjectID uint  `json:"subject_id" gorm:"not null;uniqueIndex:idx_class_subject"`
	TeacherID *uint `json:"teacher_id" gorm:"index"`

	Class   *Class   `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Subject *Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Teacher *User    `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
}

// TableName 表名
func (cs *ClassSubject) TableName() string {
	return "class_subjects"
}

// Enrollment 学籍记录模型
type Enrollment struct {
	BaseModel
	TenantID  uint   `json:"tenant_id" gorm:"not null;index"`
	StudentID uint   `json:"student_id" gorm:"not null;index"`
	ClassID   uint   `json:"class_id" gorm:"not null;index"`
	TermID    *uint  `json:"term_id"`
	Status    string `json:"status" gorm:"default:'enrolled';size:20"`
}

// TableName 表名
func (e *Enrollment) TableName() string {
	return "enrollments"
}
