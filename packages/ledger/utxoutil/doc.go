// Package utxoutil provides the combinators that are used to assemble transactions. Every combinator returns a
// small Draft fragment; fragments are merged with the Draft's monoidal Combine operation and turned into a signed,
// submittable Transaction by Build.
package utxoutil
