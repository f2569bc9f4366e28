package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/petasbytes/job-agent/internal/domain"
	"github.com/petasbytes/job-agent/internal/privacy"
	"github.com/petasbytes/job-agent/internal/store"
)

// decodeProfile reads a YAML profile, rejecting unknown keys, and normalizes it.
func decodeProfile(r io.Reader) (domain.UserProfile, error) {
	var p domain.UserProfile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return p, errors.New("profile file is empty")
		}
		return p, fmt.Errorf("decode profile: %w", err)
	}
	if p.Name == "" {
		return p, errors.New("profile needs a name")
	}
	if p.ExperienceLevel != "" {
		lvl, err := domain.ParseExperienceLevel(string(p.ExperienceLevel))
		if err != nil {
			return p, err
		}
		p.ExperienceLevel = lvl
	}
	for i, jt := range p.DesiredJobTypes {
		t, err := domain.ParseJobType(string(jt))
		if err != nil {
			return p, err
		}
		p.DesiredJobTypes[i] = t
	}
	p.Normalize()
	return p, nil
}

func runProfileImport(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	p, err := decodeProfile(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	st, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.SaveProfile(cmd.Context(), &p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s (personal fields encrypted: %t)\n", p.ID, st.Encrypted())
	return nil
}

func runProfileShow(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	st, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	p, err := st.LatestProfile(cmd.Context())
	if errors.Is(err, store.ErrNotFound) {
		return errNoProfile
	}
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(privacy.SanitizeProfile(p), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", b)
	return nil
}
