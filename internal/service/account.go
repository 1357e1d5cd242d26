package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/repository"
)

// tempPasswordLength 生成的临时密码长度
const tempPasswordLength = 10

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ensureEmailFree 邮箱已被 exceptUserID 以外的账号占用时返回 ErrEmailExists
func ensureEmailFree(ctx context.Context, repo *repository.Repository, email, exceptUserID string) error {
	existing, err := repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.UserID == exceptUserID {
		return nil
	}
	return ErrEmailExists.WithField("email", "already in use")
}

// ensureMatriculeFree 学号唯一性校验，规则同上
func ensureMatriculeFree(ctx context.Context, repo *repository.Repository, matricule, exceptStudentID string) error {
	existing, err := repo.Student.GetByMatricule(ctx, matricule)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.StudentID == exceptStudentID {
		return nil
	}
	return ErrMatriculeExists.WithField("matricule", "already in use")
}

// generateTempPassword 生成随机密码，至少包含一个字母和一个数字
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 8 {
		length = 8
	}

	pick := func(set string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
		if err != nil {
			return 0, err
		}
		return set[n.Int64()], nil
	}

	result := make([]byte, length)
	var err error
	if result[0], err = pick(letters); err != nil {
		return "", err
	}
	if result[1], err = pick(digits); err != nil {
		return "", err
	}
	for i := 2; i < length; i++ {
		if result[i], err = pick(all); err != nil {
			return "", err
		}
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}
