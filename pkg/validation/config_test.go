package validation

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConfigValidator_Required(t *testing.T) {
	cv := NewConfigValidator("Store")
	cv.Required("Dir", " ")

	if !cv.HasErrors() {
		t.Error("Expected error for blank required field")
	}

	cv2 := NewConfigValidator("Store")
	cv2.Required("Dir", "./projects")

	if cv2.HasErrors() {
		t.Error("Expected no error for non-empty required field")
	}
}

func TestConfigValidator_MinInt(t *testing.T) {
	cv := NewConfigValidator("Postgres")
	cv.MinInt("MaxConns", 0, 1)

	if !cv.HasErrors() {
		t.Error("Expected error for value below minimum")
	}

	cv2 := NewConfigValidator("Postgres")
	cv2.MinInt("MaxConns", 4, 1)

	if cv2.HasErrors() {
		t.Error("Expected no error for value at or above minimum")
	}
}

func TestConfigValidator_MinDuration(t *testing.T) {
	cv := NewConfigValidator("Postgres")
	cv.MinDuration("ConnectTimeout", 10*time.Millisecond, time.Second)
	if !cv.HasErrors() {
		t.Error("Expected error for short duration")
	}
}

func TestConfigValidator_Floats(t *testing.T) {
	cv := NewConfigValidator("Run")
	cv.PositiveFloat("DT", 0).LessFloat("StartTime/EndTime", 10, 5)

	if got := len(cv.Errors()); got != 2 {
		t.Fatalf("Expected 2 errors, got %d", got)
	}

	cv2 := NewConfigValidator("Run")
	cv2.PositiveFloat("DT", 0.1).LessFloat("StartTime/EndTime", 0, 10)
	if cv2.HasErrors() {
		t.Errorf("Expected no errors, got %v", cv2.Errors())
	}
}

func TestConfigValidator_OneOf(t *testing.T) {
	allowed := []string{"file", "s3", "postgres"}

	cv := NewConfigValidator("Store")
	cv.OneOf("Backend", "ftp", allowed)
	if !cv.HasErrors() {
		t.Error("Expected error for value not in allowed list")
	}

	cv2 := NewConfigValidator("Store")
	cv2.OneOf("Backend", "s3", allowed)
	if cv2.HasErrors() {
		t.Error("Expected no error for allowed value")
	}
}

func TestConfigValidator_NoBlank(t *testing.T) {
	cv := NewConfigValidator("Equations")
	cv.NoBlank("ReservedNames", []string{"sin", ""})

	if !cv.HasErrors() {
		t.Fatal("Expected error for blank entry")
	}
	if !strings.Contains(cv.Error().Error(), "ReservedNames[1]") {
		t.Errorf("Expected index in error, got %v", cv.Error())
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("bucket name is invalid")

	cv := NewConfigValidator("S3")
	cv.Custom("Bucket", func() error { return sentinel })

	if !errors.Is(cv.Validate(), sentinel) {
		t.Errorf("Expected custom error to be wrapped, got %v", cv.Validate())
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("Store")
	cv.When(false, func(v *ConfigValidator) {
		v.Required("Bucket", "")
	})
	if cv.HasErrors() {
		t.Error("Expected no error when condition is false")
	}

	cv.When(true, func(v *ConfigValidator) {
		v.Required("Bucket", "")
	})
	if !cv.HasErrors() {
		t.Error("Expected error when condition is true")
	}
}

func TestConfigValidator_ValidateCollectsAll(t *testing.T) {
	cv := NewConfigValidator("Config")
	cv.Required("A", "").Required("B", "").Required("C", "ok")

	err := cv.Validate()
	if err == nil {
		t.Fatal("Expected combined error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Config.A") || !strings.Contains(msg, "Config.B") {
		t.Errorf("Expected both failures in %q", msg)
	}
	if strings.Contains(msg, "Config.C") {
		t.Errorf("Did not expect C in %q", msg)
	}

	if err := NewConfigValidator("Empty").Validate(); err != nil {
		t.Errorf("Expected nil for no errors, got %v", err)
	}
}

type stubConfig struct{ err error }

func (s stubConfig) Validate() error { return s.err }

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if err := ValidateConfig(stubConfig{}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "file"); got != "file" {
		t.Errorf("DefaultOr(\"\") = %q", got)
	}
	if got := DefaultOr("s3", "file"); got != "s3" {
		t.Errorf("DefaultOr(\"s3\") = %q", got)
	}
	if got := DefaultOr(0.0, 0.1); got != 0.1 {
		t.Errorf("DefaultOr(0) = %v", got)
	}
}
