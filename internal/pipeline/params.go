package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Params are the five inputs of one assembly. They are fixed for the whole run.
type Params struct {
	// ImagePath is the still image. Plain paths and s3:// URIs are accepted.
	ImagePath string `json:"image_path" validate:"required"`
	// AudioPath is the soundtrack. Plain paths and s3:// URIs are accepted.
	AudioPath string `json:"audio_path" validate:"required"`
	// SequenceName names the created sequence.
	SequenceName string `json:"sequence_name" validate:"required"`
	// PresetName is matched exactly against the encoder registry.
	PresetName string `json:"preset_name" validate:"required"`
	// OutputPath is where the encoder writes the file.
	OutputPath string `json:"output_path" validate:"required"`
}

var validate = validator.New()

// Validate checks that every parameter is set.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("missing %s", strings.Join(fields, ", "))
}
