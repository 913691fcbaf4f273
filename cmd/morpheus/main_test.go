package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morpheus-mall/mall-backend/internal/reports"
)

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "validate", "export"})
}

func TestOptionalUint(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Uint("designer", 0, "")
	cmd.Flags().Uint("boutique", 0, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--designer", "0"}))

	d, err := optionalUint(cmd, "designer")
	require.NoError(t, err)
	require.NotNil(t, d, "an explicit zero is still set")
	assert.Equal(t, uint(0), *d)

	b, err := optionalUint(cmd, "boutique")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestExportRequest(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		cmd := &cobra.Command{}
		addExportFlags(cmd)
		require.NoError(t, cmd.Flags().Parse(args))
		return cmd
	}

	req, err := exportRequest(newCmd("--format", "pdf", "--only-active", "--designer", "4"))
	require.NoError(t, err)
	assert.Equal(t, reports.FormatPDF, req.Format)
	assert.True(t, req.OnlyActive)
	require.NotNil(t, req.DesignerID)
	assert.Equal(t, uint(4), *req.DesignerID)
	assert.Nil(t, req.BoutiqueID)

	_, err = exportRequest(newCmd("--format", "docx"))
	assert.Error(t, err)
}
