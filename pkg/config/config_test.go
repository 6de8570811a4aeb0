// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/go-rewrite/pkg/rewrite"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func Test_Config_01(t *testing.T) {
	cfg := Default()
	//
	require.NoError(t, cfg.Validate())
	//
	level, err := cfg.CompressionLevel()
	require.NoError(t, err)
	require.Equal(t, zstd.SpeedDefault, level)
	//
	strategy, err := cfg.Strategy()
	require.NoError(t, err)
	require.Equal(t, rewrite.OUTERMOST, strategy)
}

func Test_Config_02(t *testing.T) {
	// No configuration file gives the defaults
	cfg := check_Load(t, t.TempDir())
	//
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("unexpected configuration (-want +got):\n%s", diff)
	}
}

func Test_Config_03(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Objects.Directory = "build"
	cfg.Objects.Compression = "best"
	cfg.Reduction.Strategy = "innermost"
	//
	require.NoError(t, cfg.Save(dir))
	//
	if diff := cmp.Diff(cfg, check_Load(t, dir)); diff != "" {
		t.Errorf("unexpected configuration (-want +got):\n%s", diff)
	}
}

func Test_Config_04(t *testing.T) {
	dir := t.TempDir()
	// Partial configuration file
	contents := "reduction:\n  strategy: innermost\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kernel.yaml"), []byte(contents), 0644))
	//
	cfg := check_Load(t, dir)
	require.Equal(t, "innermost", cfg.Reduction.Strategy)
	require.Equal(t, ".lpo", cfg.Objects.Extension)
}

func Test_Config_05(t *testing.T) {
	// Environment overrides defaults
	t.Setenv("REWRITE_OBJECTS_COMPRESSION", "fastest")
	//
	cfg := check_Load(t, t.TempDir())
	level, err := cfg.CompressionLevel()
	require.NoError(t, err)
	require.Equal(t, zstd.SpeedFastest, level)
}

func Test_Config_06(t *testing.T) {
	check_Invalid(t, "objects.compression", func(cfg *Config) { cfg.Objects.Compression = "maximum" })
	check_Invalid(t, "objects.extension", func(cfg *Config) { cfg.Objects.Extension = "lpo" })
	check_Invalid(t, "reduction.strategy", func(cfg *Config) { cfg.Reduction.Strategy = "sideways" })
	check_Invalid(t, "logging.level", func(cfg *Config) { cfg.Logging.Level = "chatty" })
}

func Test_Config_07(t *testing.T) {
	dir := t.TempDir()
	contents := "reduction:\n  strategy: sideways\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kernel.yaml"), []byte(contents), 0644))
	//
	t.Setenv("HOME", t.TempDir())
	_, err := Load(dir)
	require.Error(t, err)
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_Load(t *testing.T, dir string) *Config {
	t.Helper()
	// Ignore any configuration of the user running the tests.
	t.Setenv("HOME", t.TempDir())
	//
	cfg, err := Load(dir)
	require.NoError(t, err)
	//
	return cfg
}

func check_Invalid(t *testing.T, field string, mutate func(*Config)) {
	var configError *ConfigError
	//
	cfg := Default()
	mutate(cfg)
	//
	err := cfg.Validate()
	require.True(t, errors.As(err, &configError), "expected error for %s", field)
	require.Equal(t, field, configError.Field)
}
