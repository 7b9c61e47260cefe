package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	categoryService "storefront.GO/service/category"
)

func TestRegistry_Register_Apply(t *testing.T) {
	out := &bytes.Buffer{}
	testCmd := &cobra.Command{
		Use: "test:registry",
		Run: func(c *cobra.Command, args []string) {
			out.WriteString("ok")
		},
	}
	Register(testCmd)
	assert.Panics(t, func() { Register(&cobra.Command{Use: "test:registry"}) })
	Apply()
	assert.Panics(t, func() { Register(&cobra.Command{Use: "test:late"}) })

	rootCmd.SetOut(out)
	rootCmd.SetArgs([]string{"test:registry"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "ok", out.String())
}

func TestPrintTree(t *testing.T) {
	var root, child categoryService.Node
	root.EntityID, root.Name, root.Alias = 1, "Gear", "gear"
	child.EntityID, child.Name, child.Alias = 2, "Tents", "tents"
	root.Children = []categoryService.Node{child}

	var buf bytes.Buffer
	printTree(&buf, []categoryService.Node{root}, 0)
	assert.Equal(t, "Gear (#1, gear)\n  Tents (#2, tents)\n", buf.String())
}
